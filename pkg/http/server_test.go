package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type routesFunc func(e *echo.Echo)

func (f routesFunc) RegisterRoutes(e *echo.Echo) { f(e) }

func serve(s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerHealthz(t *testing.T) {
	s := NewServer(nil, nil)
	rec := serve(s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected code %d", rec.Code)
	}
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Status)
	}
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer(routesFunc(func(e *echo.Echo) {
		e.GET("/boom", func(echo.Context) error { panic("boom") })
	}), nil)

	rec := serve(s, http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected code %d", rec.Code)
	}
}

func TestServerCORSPreflight(t *testing.T) {
	s := NewServer(nil, nil)
	rec := serve(s, http.MethodOptions, "/api/scanner", map[string]string{
		echo.HeaderOrigin: "http://localhost:5173",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected code %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestServerMetricsPathDisabled(t *testing.T) {
	s := NewServer(nil, nil, WithMetricsPath(""))
	rec := serve(s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected code %d", rec.Code)
	}
}
