package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "./urly.db", cfg.DatabasePath)
	assert.Equal(t, "urly/", cfg.ConsulPrefix)
	assert.Equal(t, "*/10 * * * *", cfg.PollSchedule)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.ResolvePropertyName)
	assert.Equal(t, []string{"www.ur-net.go.jp"}, cfg.NameLookupHosts)
	assert.Equal(t, int64(0), cfg.TelegramChatID)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(newTestViper(map[string]interface{}{
		"store_driver":         "CONSUL",
		"consul_address":       "127.0.0.1:8500",
		"poll_schedule":        " @every 5m ",
		"http_timeout_seconds": 5,
		"telegram_chat_id":     "12345",
		"name_lookup_hosts":    " www.ur-net.go.jp, ,127.0.0.1 ",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverConsul, cfg.StoreDriver)
	assert.Equal(t, "127.0.0.1:8500", cfg.ConsulAddress)
	assert.Equal(t, "@every 5m", cfg.PollSchedule)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, int64(12345), cfg.TelegramChatID)
	assert.Equal(t, []string{"www.ur-net.go.jp", "127.0.0.1"}, cfg.NameLookupHosts)
}

func TestLoadNameLookupDisabled(t *testing.T) {
	cfg, err := Load(newTestViper(map[string]interface{}{
		"resolve_property_name": false,
		"name_lookup_hosts":     "",
	}))
	require.NoError(t, err)
	assert.False(t, cfg.ResolvePropertyName)
	assert.Empty(t, cfg.NameLookupHosts)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"unknown driver", map[string]interface{}{"store_driver": "redis"}},
		{"empty sqlite path", map[string]interface{}{"database_path": ""}},
		{"bad port", map[string]interface{}{"port": 0}},
		{"bad timeout", map[string]interface{}{"http_timeout_seconds": -1}},
		{"bad log level", map[string]interface{}{"log_level": "loud"}},
		{"no name lookup hosts", map[string]interface{}{"name_lookup_hosts": " , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newTestViper(tt.values))
			assert.Error(t, err)
		})
	}
}
