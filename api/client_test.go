package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firmaboard/firmaboard-go/api"
	"github.com/firmaboard/firmaboard-go/tokens"
)

func newStore() (*tokens.Store, *tokens.MemoryArea, *tokens.MemoryArea) {
	ephemeral := tokens.NewMemoryArea()
	durable := tokens.NewMemoryArea()
	return tokens.NewStore(ephemeral, durable), ephemeral, durable
}

func TestClient_OutboundDecorator(t *testing.T) {
	t.Run("bearer and tenant headers attached when present", func(t *testing.T) {
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		store, _, _ := newStore()
		require.NoError(t, store.Save(tokens.Pair{Access: "tok", Refresh: "ref"}, false))

		client := api.New(server.URL, store)
		client.SetTenant("acme")

		var out map[string]interface{}
		require.NoError(t, client.Get(context.Background(), "/core/session/", &out))

		require.Equal(t, "Bearer tok", got.Get("Authorization"))
		require.Equal(t, "acme", got.Get("X-Tenant-Slug"))
		require.NotEmpty(t, got.Get("X-Request-ID"))
	})

	t.Run("missing token and tenant are valid states", func(t *testing.T) {
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		store, _, _ := newStore()
		client := api.New(server.URL, store)

		require.NoError(t, client.Get(context.Background(), "/core/session/", nil))
		require.Empty(t, got.Get("Authorization"))
		require.Empty(t, got.Get("X-Tenant-Slug"))
	})
}

func TestClient_TokenRotation(t *testing.T) {
	t.Run("rotated bearer overwrites the held access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Authorization", "Bearer rotated")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		store, ephemeral, _ := newStore()
		require.NoError(t, store.Save(tokens.Pair{Access: "old", Refresh: "keep"}, false))

		client := api.New(server.URL, store)
		require.NoError(t, client.Get(context.Background(), "/core/session/", nil))

		access, _ := ephemeral.Get(tokens.KeyAccessToken)
		require.Equal(t, "rotated", access)

		refresh, ok := store.RefreshToken()
		require.True(t, ok)
		require.Equal(t, "keep", refresh)
	})

	t.Run("no rotation header leaves tokens alone", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		store, _, _ := newStore()
		require.NoError(t, store.Save(tokens.Pair{Access: "old", Refresh: "keep"}, false))

		client := api.New(server.URL, store)
		require.NoError(t, client.Get(context.Background(), "/core/session/", nil))

		access, _ := store.AccessToken()
		require.Equal(t, "old", access)
	})
}

func TestClient_Unauthorized(t *testing.T) {
	t.Run("401 clears both areas regardless of rememberMe", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		for _, rememberMe := range []bool{true, false} {
			store, ephemeral, durable := newStore()
			require.NoError(t, store.Save(tokens.Pair{Access: "a", Refresh: "r"}, rememberMe))

			client := api.New(server.URL, store)
			err := client.Get(context.Background(), "/core/session/", nil)
			require.Error(t, err)
			require.True(t, api.IsStatus(err, http.StatusUnauthorized))

			_, ok := store.AccessToken()
			require.False(t, ok, "rememberMe=%v", rememberMe)
			_, ok = store.RefreshToken()
			require.False(t, ok, "rememberMe=%v", rememberMe)
			_, ok = ephemeral.Get(tokens.KeyAccessToken)
			require.False(t, ok)
			_, ok = durable.Get(tokens.KeyAccessToken)
			require.False(t, ok)
		}
	})

	t.Run("other statuses pass through without clearing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
		}))
		defer server.Close()

		store, _, _ := newStore()
		require.NoError(t, store.Save(tokens.Pair{Access: "a", Refresh: "r"}, false))

		client := api.New(server.URL, store)
		err := client.Get(context.Background(), "/core/session/", nil)
		require.Error(t, err)

		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusInternalServerError, apiErr.Status)
		require.Equal(t, "boom", apiErr.Message)

		_, ok := store.AccessToken()
		require.True(t, ok)
	})
}

func TestClassify(t *testing.T) {
	t.Run("401 is invalid credentials", func(t *testing.T) {
		failure := api.Classify(&api.Error{Status: 401, Message: "nope"})
		require.Equal(t, api.KindInvalidCredentials, failure.Code)
	})

	t.Run("429 is rate limited", func(t *testing.T) {
		failure := api.Classify(&api.Error{Status: 429, Message: "slow down"})
		require.Equal(t, api.KindRateLimitExceeded, failure.Code)
	})

	t.Run("transport failure is a network error", func(t *testing.T) {
		store, _, _ := newStore()
		client := api.New("http://127.0.0.1:1", store)

		err := client.Get(context.Background(), "/core/session/", nil)
		require.Error(t, err)
		require.Equal(t, api.KindNetworkError, api.Classify(err).Code)
	})

	t.Run("anything else is unknown", func(t *testing.T) {
		failure := api.Classify(&api.Error{Status: 500, Message: "boom"})
		require.Equal(t, api.KindUnknown, failure.Code)
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("multipart fields and progress", func(t *testing.T) {
		var fileName, targetTable, fileBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			targetTable = r.FormValue("target_table")
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			fileName = header.Filename
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			fileBody = string(content)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		store, _, _ := newStore()
		client := api.New(server.URL, store)

		var lastPct int
		err := client.Upload(context.Background(), "/data-import/uploads/", api.File{
			Name:    "readings.csv",
			Content: []byte("ts,power\n1,2\n"),
		}, "wind-farm-timeseries", func(pct int) { lastPct = pct })

		require.NoError(t, err)
		require.Equal(t, "readings.csv", fileName)
		require.Equal(t, "wind-farm-timeseries", targetTable)
		require.Equal(t, "ts,power\n1,2\n", fileBody)
		require.Equal(t, 100, lastPct)
	})

	t.Run("upload failure surfaces the detail message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "unsupported file type"})
		}))
		defer server.Close()

		store, _, _ := newStore()
		client := api.New(server.URL, store)

		err := client.Upload(context.Background(), "/data-import/uploads/", api.File{Name: "x.bin", Content: []byte{1}}, "", nil)
		require.Error(t, err)

		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "unsupported file type", apiErr.Message)
	})
}
