package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/handler"
	"github.com/boddenberg/strike-crm/internal/infra/cache"
	"github.com/boddenberg/strike-crm/internal/infra/memstore"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/service"

	"go.uber.org/zap"
)

type testServer struct {
	router  http.Handler
	store   *memstore.Store
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithPinger(t, nil)
}

func newTestServerWithPinger(t *testing.T, pinger handler.Pinger) *testServer {
	t.Helper()

	store := memstore.New()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	userCache := cache.New[*domain.User](time.Minute)
	t.Cleanup(userCache.Close)

	leads := service.NewLeadService(store, metrics, logger)
	svc := handler.Services{
		Auth:       service.NewAuthService(store, service.NewCredentials("test-secret"), userCache, metrics, logger),
		Leads:      leads,
		Activities: service.NewActivityService(store, leads, metrics, logger),
		Cards:      service.NewBusinessCardService(store, logger),
		Dashboard:  service.NewDashboardService(store, store, metrics),
		Store:      pinger,
	}
	return &testServer{
		router:  handler.NewRouter(svc, []string{"*"}, metrics, logger),
		store:   store,
		metrics: metrics,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz_StoreDown(t *testing.T) {
	srv := newTestServerWithPinger(t, pingerFunc(func(context.Context) error {
		return errors.New("no reachable servers")
	}))
	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	health := decode[domain.HealthStatus](t, rec)
	if health.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %q", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/readyz", "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/ping", "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "m@example.com", "password": "pw", "name": "M",
	})

	rec := srv.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"crm_auth_events_total", "crm_http_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in /metrics output", name)
		}
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	srv := newTestServer(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/leads"},
		{http.MethodPost, "/api/leads"},
		{http.MethodGet, "/api/leads/x"},
		{http.MethodPut, "/api/leads/x"},
		{http.MethodPatch, "/api/leads/x/stage?stage=Closed"},
		{http.MethodDelete, "/api/leads/x"},
		{http.MethodGet, "/api/leads/x/activities"},
		{http.MethodPost, "/api/activities"},
		{http.MethodGet, "/api/business-card"},
		{http.MethodPost, "/api/business-card"},
		{http.MethodGet, "/api/dashboard/stats"},
	}

	for _, rt := range routes {
		for name, token := range map[string]string{"missing": "", "garbage": "not-a-jwt"} {
			rec := srv.do(t, rt.method, rt.path, token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s %s (%s token): expected 401, got %d", rt.method, rt.path, name, rec.Code)
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("%s %s: expected WWW-Authenticate Bearer, got %q", rt.method, rt.path, got)
			}
		}
	}
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decode[map[string]string](t, rec); body["detail"] == "" {
		t.Error("expected detail in error body")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin on preflight")
	}
}
