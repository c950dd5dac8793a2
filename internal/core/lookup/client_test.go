package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safescan/internal/infrastructure/config"
	"safescan/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.LookupConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
}

func TestLookupFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/737628064502.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"status": 1,
			"product": {
				"product_name": "Rice Noodles",
				"generic_name": "Thai rice noodle kit",
				"ingredients_text": "rice noodles, seasoning"
			}
		}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Lookup(context.Background(), "737628064502")
	require.NoError(t, err)
	assert.Equal(t, "Rice Noodles", result.Name)
	assert.Equal(t, "Thai rice noodle kit", result.Description)
	assert.Equal(t, "rice noodles, seasoning", result.IngredientsText)
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": 0}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "000")
	assert.ErrorIs(t, err, common.ErrLookupNotFound)
}

func TestLookupHTTP404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "000")
	assert.ErrorIs(t, err, common.ErrLookupNotFound)
}

func TestLookupFillsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": 1, "product": {}}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Lookup(context.Background(), "123")
	require.NoError(t, err)

	// 缺名稱或描述時補預設文字，讓掃描管線永遠有可用輸入
	assert.Equal(t, "Unknown Product", result.Name)
	assert.Equal(t, "No description", result.Description)
	assert.Empty(t, result.IngredientsText)
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrLookupNotFound)
}
