package library

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	var gotMethod, gotAuth, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(RemoteConfig{URL: srv.URL})
	err := client.Upload(context.Background(), "t0ken", []LibraryEntry{
		{Slug: "foo", Playtime: "2.50000", Categories: []string{}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Token t0ken", gotAuth)
	assert.Equal(t, "application/json", gotContentType)

	var sent []LibraryEntry
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	require.Len(t, sent, 1)
	assert.Equal(t, "2.50000", sent[0].Playtime)
}

func TestClient_Fetch(t *testing.T) {
	t.Run("Since Query Parameter", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte(`[{"name":"Foo","slug":"foo","runner":"wine","platform":"","playtime":5.0,"lastplayed":50,"service":"","service_id":""}]`))
		}))
		defer srv.Close()

		client := NewClient(RemoteConfig{URL: srv.URL})
		entries, err := client.Fetch(context.Background(), "t0ken", 12345)
		require.NoError(t, err)
		assert.Equal(t, "since=12345", gotQuery)
		require.Len(t, entries, 1)
		assert.Equal(t, 5.0, entries[0].Playtime)
		assert.Equal(t, int64(50), entries[0].LastPlayed)
	})

	t.Run("Full Sync Omits Since", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := NewClient(RemoteConfig{URL: srv.URL})
		entries, err := client.Fetch(context.Background(), "t0ken", 0)
		require.NoError(t, err)
		assert.Empty(t, gotQuery)
		assert.Empty(t, entries)
	})

	t.Run("Server Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(RemoteConfig{URL: srv.URL})
		_, err := client.Fetch(context.Background(), "t0ken", 0)
		assert.Error(t, err)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := NewClient(RemoteConfig{URL: srv.URL})
		_, err := client.Fetch(context.Background(), "t0ken", 0)
		assert.Error(t, err)
	})
}

func TestClient_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Write([]byte(`{"deleted":2}`))
	}))
	defer srv.Close()

	client := NewClient(RemoteConfig{URL: srv.URL})
	resp, err := client.Delete(context.Background(), "t0ken", []LibraryEntry{{Slug: "a"}, {Slug: "b"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":2}`, string(resp))
}

func TestClient_TransportError(t *testing.T) {
	// Nothing listens here.
	client := NewClient(RemoteConfig{URL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	err := client.Upload(context.Background(), "t0ken", nil)
	assert.Error(t, err)
}

func TestConfigCredentials(t *testing.T) {
	t.Run("Literal Token", func(t *testing.T) {
		creds := NewConfigCredentials(RemoteConfig{Token: "abc"})
		token, ok := creds.Token()
		assert.True(t, ok)
		assert.Equal(t, "abc", token)
	})

	t.Run("Token File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

		creds := NewConfigCredentials(RemoteConfig{TokenFile: path})
		token, ok := creds.Token()
		assert.True(t, ok)
		assert.Equal(t, "from-file", token)
	})

	t.Run("Missing Everything", func(t *testing.T) {
		creds := NewConfigCredentials(RemoteConfig{})
		_, ok := creds.Token()
		assert.False(t, ok)
	})

	t.Run("Unreadable Token File", func(t *testing.T) {
		creds := NewConfigCredentials(RemoteConfig{TokenFile: "/does/not/exist"})
		_, ok := creds.Token()
		assert.False(t, ok)
	})
}
