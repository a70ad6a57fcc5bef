package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRouterRegistersHealthRoute(t *testing.T) {
	router := newRouter()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestNewRouterProtectsAPIRoutes(t *testing.T) {
	router := newRouter()

	for _, path := range []string{
		"/app/api/ingredients",
		"/app/api/recipes",
		"/app/api/recipes/1/history",
		"/app/api/products",
	} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected %s to require authentication, got %d", path, rr.Code)
		}
	}
}
