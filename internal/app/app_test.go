package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/storefront/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T, environ map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(environ)
	require.NoError(t, err)
	return cfg
}

func testApp(t *testing.T, environ map[string]string) *App {
	t.Helper()
	reg := prometheus.NewRegistry()
	a, err := newApp(testConfig(t, environ), testLogger(), reg, reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func serve(a *App, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewApp_ServesStorefront(t *testing.T) {
	a := testApp(t, map[string]string{"STORE_NAME": "Corner Shop"})

	rec := serve(a, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Corner Shop")
	assert.Equal(t, 1, a.store.Len())

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/health/ready").Code)
	assert.Contains(t, serve(a, http.MethodGet, "/metrics").Body.String(), "storefront_cart_views 1")
}

func TestNewApp_StoreCurrency(t *testing.T) {
	a := testApp(t, map[string]string{"STORE_CURRENCY": "EUR"})

	rec := serve(a, http.MethodGet, "/")

	assert.Contains(t, rec.Body.String(), "€63.99")
}

func TestNewApp_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  hero: { title: Welcome }
  featured:
    - { id: "1", name: Enamel Mug, price: "9.50", image: "https://img.example.com/mug.jpg" }
products:
  - { id: "1", name: Enamel Mug, price: "9.50", image: "https://img.example.com/mug.jpg" }
`), 0o600))

	a := testApp(t, map[string]string{"CATALOG_PATH": path})

	assert.Contains(t, serve(a, http.MethodGet, "/").Body.String(), "Enamel Mug")
}

func TestNewApp_MissingCatalogFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := testConfig(t, map[string]string{"CATALOG_PATH": filepath.Join(t.TempDir(), "missing.yaml")})

	a, err := newApp(cfg, testLogger(), reg, reg)

	assert.Nil(t, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestShutdown_DropsCartViews(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := newApp(testConfig(t, nil), testLogger(), reg, reg)
	require.NoError(t, err)
	serve(a, http.MethodGet, "/")
	require.Equal(t, 1, a.store.Len())

	require.NoError(t, a.Shutdown())

	assert.Zero(t, a.store.Len())
}
