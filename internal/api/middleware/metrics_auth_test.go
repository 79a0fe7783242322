package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestMetricsBasicAuth_認証設定なしの場合はパススルー(t *testing.T) {
	t.Setenv("METRICS_USER", "")
	t.Setenv("METRICS_PASSWORD", "")

	e := echo.New()
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	}, MetricsBasicAuth())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsBasicAuth_正しい認証情報で通過(t *testing.T) {
	t.Setenv("METRICS_USER", "admin")
	t.Setenv("METRICS_PASSWORD", "secret")

	e := echo.New()
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	}, MetricsBasicAuth())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsBasicAuth_誤った認証情報で拒否(t *testing.T) {
	t.Setenv("METRICS_USER", "admin")
	t.Setenv("METRICS_PASSWORD", "secret")

	e := echo.New()
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	}, MetricsBasicAuth())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsBasicAuth_認証情報なしで拒否(t *testing.T) {
	t.Setenv("METRICS_USER", "admin")
	t.Setenv("METRICS_PASSWORD", "secret")

	e := echo.New()
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	}, MetricsBasicAuth())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
