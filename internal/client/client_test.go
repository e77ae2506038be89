package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeaudit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageClient_GroupUsage(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes records", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query/scicomp", r.URL.Path)
			assert.Equal(t, "Bearer svc:abc123:secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"fn": "alice", "rec_aggrs": {"size": 659706976665, "size_hum": "614.4 GB"}},
				{"fn": "bob", "rec_aggrs": {"size": 329853488332, "size_hum": "307.2 GB"}}
			]`))
		}))
		defer srv.Close()

		c, err := NewUsageClient(config.UsageAPIConfig{BaseURL: srv.URL, Token: "svc:abc123:secret"})
		require.NoError(t, err)

		records, err := c.GroupUsage(ctx, "scicomp")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "alice", records[0].UserID)
		assert.Equal(t, int64(659706976665), records[0].BytesUsed)
		assert.Equal(t, "614.4 GB", records[0].BytesUsedHuman)
	})

	t.Run("unknown group", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c, err := NewUsageClient(config.UsageAPIConfig{BaseURL: srv.URL, Token: "tok"})
		require.NoError(t, err)

		_, err = c.GroupUsage(ctx, "nosuchgroup")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no usage data for group")
	})

	t.Run("server error is fatal to the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, err := NewUsageClient(config.UsageAPIConfig{BaseURL: srv.URL, Token: "tok"})
		require.NoError(t, err)

		_, err = c.GroupUsage(ctx, "scicomp")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 500")
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := NewUsageClient(config.UsageAPIConfig{Token: "tok"})
		assert.Error(t, err)

		_, err = NewUsageClient(config.UsageAPIConfig{BaseURL: "http://usage"})
		assert.Error(t, err)
	})
}

func TestUsageClient_TokenInfo(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// auth endpoint is keyed by the id segment of the token
		assert.Equal(t, "/auth/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"valid_until_hum": "2026-12-31 23:59:59"}`))
	}))
	defer srv.Close()

	c, err := NewUsageClient(config.UsageAPIConfig{BaseURL: srv.URL, Token: "svc:abc123:secret"})
	require.NoError(t, err)

	info, err := c.TokenInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-31 23:59:59", info.ValidUntil)
}

func TestDirectoryClient_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workday/alice", r.URL.Path)
			_, _ = w.Write([]byte(`{"active": true, "first_name": "Alice", "email": "alice@example.org"}`))
		}))
		defer srv.Close()

		c, err := NewDirectoryClient(config.DirectoryAPIConfig{BaseURL: srv.URL})
		require.NoError(t, err)

		entry, err := c.Lookup(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, entry.Active)
		assert.Equal(t, "Alice", entry.FirstName)
		assert.Equal(t, "alice@example.org", entry.Email)
	})

	t.Run("not found maps to sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c, err := NewDirectoryClient(config.DirectoryAPIConfig{BaseURL: srv.URL})
		require.NoError(t, err)

		entry, err := c.Lookup(ctx, "ghost")
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("transport failure is not the sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c, err := NewDirectoryClient(config.DirectoryAPIConfig{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Lookup(ctx, "alice")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := NewDirectoryClient(config.DirectoryAPIConfig{})
		assert.Error(t, err)
	})
}
