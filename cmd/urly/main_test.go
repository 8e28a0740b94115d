package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urly/config"
	"urly/internal/database"
	"urly/internal/models"
	"urly/internal/notifier"
	"urly/internal/registry"
)

func TestPrintSubscriptions(t *testing.T) {
	count := 2
	checked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	subs := []models.Subscription{
		{ID: "a", PropertyName: "Sample Estate", Threshold: 1, LastCount: &count, LastChecked: &checked},
		{ID: "b", PropertyURL: "https://www.ur-net.go.jp/chintai/20_7140.html", Threshold: 3},
	}

	var out bytes.Buffer
	printSubscriptions(&out, subs)

	text := out.String()
	assert.Contains(t, text, "LAST CHECKED")
	assert.Contains(t, text, "Sample Estate")
	assert.Contains(t, text, "2024-05-01 12:00")
	assert.Contains(t, text, "never")
}

func TestListCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "urly.db")

	store, err := database.NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, registry.New(store).Put(context.Background(), &models.Subscription{
		ID:           "abc",
		PropertyName: "Sample Estate",
		Threshold:    1,
	}))
	require.NoError(t, store.Close())

	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_PATH", dbPath)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "abc")
	assert.Contains(t, out.String(), "Sample Estate")
}

func TestPollCommandEmptyStore(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "urly.db"))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"poll"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "checked=0 notified=0 failed=0\n", out.String())
}

func TestNotifierUsesConfiguredTimeout(t *testing.T) {
	release := make(chan struct{})
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer webhook.Close()
	defer close(release)

	n, err := newNotifier(&config.Config{HTTPTimeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	start := time.Now()
	err = n.Send(context.Background(), webhook.URL, notifier.Alert{Message: "test"})

	var notifyErr *notifier.NotifyError
	require.True(t, errors.As(err, &notifyErr))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInvalidConfig(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"list", "--store-driver", "redis"})
	assert.Error(t, cmd.Execute())
}
