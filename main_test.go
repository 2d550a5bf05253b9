package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wrenbin/wrenbin/config"
	"github.com/wrenbin/wrenbin/internal/keygen"
	"github.com/wrenbin/wrenbin/internal/services"
	"github.com/wrenbin/wrenbin/storage"
)

func newRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := services.NewPasteService(storage.NewMemoryStore(), keygen.New(cfg.KeyLength))
	return setupRouter(service, cfg, slog.New(slog.DiscardHandler))
}

func TestRouterHealth(t *testing.T) {
	router := newRouter(t, config.DefaultConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /health: expected 200, got %d", w.Code)
	}
}

func TestRouterUnknownRouteIsJSON404(t *testing.T) {
	router := newRouter(t, config.DefaultConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("expected JSON error body, got content type %q", ct)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	router := newRouter(t, cfg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /metrics: expected 200, got %d", w.Code)
	}

	cfg.EnableMetrics = false
	router = newRouter(t, cfg)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /metrics with metrics disabled: expected 404, got %d", w.Code)
	}
}
