package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"inventario/internal/config"
	"inventario/internal/database"
	"inventario/internal/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newApp(t *testing.T, health Pinger) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "local",
		DBDriver:       "sqlite",
		DatabaseDSN:    filepath.Join(t.TempDir(), "inventario.db"),
		LockTimeout:    time.Second,
		MetricsEnabled: true,
	}
	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := inventory.NewStore(db, zap.NewNop())
	if health == nil {
		health = store
	}
	return New(Deps{Config: cfg, Repo: store, Health: health, Log: zap.NewNop()})
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexAndRequestID(t *testing.T) {
	app := newApp(t, nil)

	resp, body := get(t, app, "/")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No hay productos.")
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestHealthz(t *testing.T) {
	resp, body := get(t, newApp(t, nil), "/healthz")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	down := pingFunc(func(context.Context) error { return errors.New("gone") })
	resp, _ = get(t, newApp(t, down), "/healthz")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newApp(t, nil)
	get(t, app, "/")

	resp, body := get(t, app, "/metrics")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "inventario_http_requests_total")
	assert.Contains(t, body, "inventario_store_operation_duration_seconds")
}

func TestNotFoundUsesErrorHandler(t *testing.T) {
	resp, body := get(t, newApp(t, nil), "/edit/404")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", body)
}

func TestErrorHandlerHidesUnexpectedErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret detail") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "secret")
}
