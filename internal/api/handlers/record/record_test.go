package record

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"safescan/internal/core/history"
	"safescan/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDisabledStoreRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store, err := history.NewStore(&config.HistoryConfig{Enabled: false})
	require.NoError(t, err)

	handler := NewHandler(store)
	router := gin.New()
	users := router.Group("/api/v1/users/:uid")
	users.GET("/history", handler.HandleListHistory)
	users.GET("/favorites", handler.HandleListFavorites)
	users.POST("/favorites", handler.HandleAddFavorite)
	users.DELETE("/favorites/:product_id", handler.HandleRemoveFavorite)
	return router
}

func TestHistoryEndpointsUnavailableWhenDisabled(t *testing.T) {
	router := newDisabledStoreRouter(t)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/users/u1/history", ""},
		{http.MethodGet, "/api/v1/users/u1/favorites", ""},
		{http.MethodPost, "/api/v1/users/u1/favorites", `{"product_id":"p1","name":"Soap"}`},
		{http.MethodDelete, "/api/v1/users/u1/favorites/p1", ""},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAddFavoriteRejectsInvalidBody(t *testing.T) {
	router := newDisabledStoreRouter(t)

	// 請求驗證在儲存層之前，缺 product_id 一律 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/u1/favorites", strings.NewReader(`{"name":"Soap"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
