package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", m.Exposition())
	app.Get("/catalog/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog/abc", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `shirtcatalog_http_requests_total{method="GET",path="/catalog/:id",status="404"} 1`)
	assert.NotContains(t, string(body), "/catalog/abc")
}

func TestMetricsMixedMethods(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", m.Exposition())
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Put("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	for i := 0; i < 3; i++ {
		resp, err = app.Test(httptest.NewRequest(http.MethodPut, "/x", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `shirtcatalog_http_requests_total{method="GET",path="/x",status="200"} 1`)
	assert.Contains(t, string(body), `shirtcatalog_http_requests_total{method="PUT",path="/x",status="200"} 3`)
}
