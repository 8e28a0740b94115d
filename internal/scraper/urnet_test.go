package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailability(t *testing.T) {
	var gotForm url.Values
	var gotHeader http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		gotHeader = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"count":3,"rent_low":80000,"rent_high":120000,"room":[{"id":"1"},{"id":"2"},{"id":"3"}]}`)
	}))
	defer srv.Close()

	s := NewURScraper(srv.URL, 5*time.Second)
	availability, err := s.GetAvailability(context.Background(), "20", "7140")
	require.NoError(t, err)

	assert.Equal(t, 3, availability.Vacancies())
	require.NotNil(t, availability.RentLow)
	assert.Equal(t, 80000, *availability.RentLow)
	assert.Nil(t, availability.RentLowCommonFee)
	assert.Len(t, availability.Rooms, 3)

	assert.Equal(t, "20", gotForm.Get("shisya"))
	assert.Equal(t, "7140", gotForm.Get("danchi"))
	assert.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", gotHeader.Get("Content-Type"))
	assert.Equal(t, "https://www.ur-net.go.jp", gotHeader.Get("Origin"))
	assert.Equal(t, "https://www.ur-net.go.jp/", gotHeader.Get("Referer"))
	assert.Equal(t, "same-site", gotHeader.Get("Sec-Fetch-Site"))
}

func TestGetAvailabilityErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantParse bool
		wantCode  int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops", wantCode: http.StatusInternalServerError},
		{name: "forbidden", status: http.StatusForbidden, body: "", wantCode: http.StatusForbidden},
		{name: "not json", status: http.StatusOK, body: "<html></html>", wantParse: true},
		{name: "missing count", status: http.StatusOK, body: `{"rent_low":1}`, wantParse: true},
		{name: "null count", status: http.StatusOK, body: `{"count":null}`, wantParse: true},
		{name: "wrong type", status: http.StatusOK, body: `{"count":"three"}`, wantParse: true},
		{name: "negative count", status: http.StatusOK, body: `{"count":-1}`, wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewURScraper(srv.URL, time.Second).GetAvailability(context.Background(), "20", "7140")
			require.Error(t, err)

			if tt.wantParse {
				var parseErr *ParseError
				assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
				return
			}
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr), "expected StatusError, got %v", err)
			assert.Equal(t, tt.wantCode, statusErr.Code)
		})
	}
}

func TestGetAvailabilityUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewURScraper(endpoint, time.Second).GetAvailability(context.Background(), "20", "7140")
	assert.Error(t, err)
}

func TestGetName(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "heading",
			html: `<html><head><title>ignored</title></head><body><h1 class="article_headings_title"> 東雲キャナルコートCODAN </h1></body></html>`,
			want: "東雲キャナルコートCODAN",
		},
		{
			name: "og title",
			html: `<html><head><meta property="og:title" content="大島四丁目団地｜UR賃貸住宅"></head><body></body></html>`,
			want: "大島四丁目団地",
		},
		{
			name: "title",
			html: `<html><head><title>Sample Estate | UR</title></head><body></body></html>`,
			want: "Sample Estate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				io.WriteString(w, tt.html)
			}))
			defer srv.Close()

			name, err := NewURScraper("", time.Second, "127.0.0.1").GetName(context.Background(), srv.URL+"/20_7140.html#top")
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestGetNameNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><p>nothing</p></body></html>`)
	}))
	defer srv.Close()

	_, err := NewURScraper("", time.Second, "127.0.0.1").GetName(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestGetNameOnlyFetchesAllowedHosts(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, `<html><head><title>admin</title></head></html>`)
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		hosts []string
		url   string
	}{
		{"default host only", nil, srv.URL + "/admin/1_2.html"},
		{"other allowed host", []string{"www.ur-net.go.jp", "example.com"}, srv.URL + "/admin/1_2.html"},
		{"non http scheme", []string{"127.0.0.1"}, "ftp://127.0.0.1/1_2.html"},
		{"unparsable", []string{"127.0.0.1"}, "http://127.0.0.1:bad/1_2.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := NewURScraper("", time.Second, tt.hosts...).GetName(context.Background(), tt.url)
			assert.ErrorIs(t, err, ErrNameHostNotAllowed)
			assert.Empty(t, name)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNewURScraperNameHosts(t *testing.T) {
	assert.True(t, NewURScraper("", time.Second).nameHostAllowed("https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140.html"))
	assert.True(t, NewURScraper("", time.Second, " WWW.UR-NET.GO.JP ").nameHostAllowed("https://www.ur-net.go.jp/20_7140.html"))
	assert.False(t, NewURScraper("", time.Second).nameHostAllowed("https://ur-net.go.jp.evil.example/20_7140.html"))
	assert.False(t, NewURScraper("", time.Second).nameHostAllowed("http://169.254.169.254/1_2.html"))
}

func TestRegistryFindScraper(t *testing.T) {
	ur := NewURScraper("", time.Second)
	registry := NewRegistry(ur)

	assert.Equal(t, Scraper(ur), registry.FindScraper("https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140.html"))
	assert.Nil(t, registry.FindScraper("https://example.com/foo.html"))
}
