package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryClientCheckStock(t *testing.T) {
	var gotSKUs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		gotSKUs = r.URL.Query()["skuCode"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"skuCode":"A1","inStock":true},{"skuCode":"A2","inStock":false}]`))
	}))
	defer srv.Close()

	client := NewInventoryClient(srv.URL+"/api/inventory", time.Second)

	stock, err := client.CheckStock(context.Background(), []string{"A1", "A2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A1", "A2"}, gotSKUs)
	require.Len(t, stock, 2)
	assert.True(t, stock[0].InStock)
	assert.Equal(t, "A2", stock[1].SKUCode)
	assert.False(t, stock[1].InStock)
}

func TestInventoryClientNullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	stock, err := NewInventoryClient(srv.URL, time.Second).CheckStock(context.Background(), []string{"A1"})

	require.NoError(t, err)
	assert.Nil(t, stock)
}

func TestInventoryClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"oops":`))
	}))
	defer srv.Close()

	_, err := NewInventoryClient(srv.URL, time.Second).CheckStock(context.Background(), []string{"A1"})

	assert.ErrorIs(t, err, ErrMalformedInventoryResponse)
}

func TestInventoryClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewInventoryClient(srv.URL, time.Second).CheckStock(context.Background(), []string{"A1"})

	assert.ErrorIs(t, err, ErrInventoryUnavailable)
	assert.Contains(t, err.Error(), "503")
}

func TestInventoryClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewInventoryClient(srv.URL, 30*time.Millisecond).CheckStock(context.Background(), []string{"A1"})

	assert.ErrorIs(t, err, ErrInventoryUnavailable)
	assert.NotErrorIs(t, err, ErrOutOfStock)
}

func TestInventoryClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewInventoryClient(url, time.Second).CheckStock(context.Background(), []string{"A1"})

	assert.ErrorIs(t, err, ErrInventoryUnavailable)
}
