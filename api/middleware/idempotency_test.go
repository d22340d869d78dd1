package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/safariconnector/backend/pkg/errors"
)

type memoryIdempotencyStore struct {
	data map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string]string)}
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	str, _ := value.(string)
	m.data[key] = str
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "mem:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func postWithKey(target, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"booking create", http.MethodPost, "/api/v1/bookings", criticalIdempotencyTTL, true},
		{"payment proof", http.MethodPost, "/api/v1/bookings/123/payment-proof", criticalIdempotencyTTL, true},
		{"quote decision", http.MethodPost, "/api/v1/quotes/456/decision", criticalIdempotencyTTL, true},
		{"payment verify", http.MethodPost, "/api/admin/v1/payments/789/verify", criticalIdempotencyTTL, true},
		{"public enquiry", http.MethodPost, "/api/public/v1/enquiries", defaultIdempotencyTTL, true},
		{"operator quote", http.MethodPost, "/api/v1/operator/quotes", defaultIdempotencyTTL, true},
		{"non idempotent", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"get excluded", http.MethodGet, "/api/v1/bookings", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, ok := routeTTL(tt.method, tt.pattern)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v got %v", tt.ok, ok)
			}
			if ok && ttl != tt.want {
				t.Fatalf("expected ttl=%v got %v", tt.want, ttl)
			}
		})
	}
}

// Mirrors the production mounting: the middleware is installed with Use on a
// sub-router, where chi's route pattern is still the partially-resolved
// "/api/v1/*" when the middleware runs. Matching must come from the URL path.
func TestIdempotencyMiddlewareGuardsSubRouterMount(t *testing.T) {
	var handlerCalls int
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(newMemoryIdempotencyStore(), nil))
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, _ *http.Request) {
				handlerCalls++
				w.WriteHeader(http.StatusCreated)
			})
		})
	})

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, postWithKey("/api/v1/bookings", "", `{"quote_id":"q1"}`))
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", missing.Code)
	}
	if handlerCalls != 0 {
		t.Fatalf("handler ran despite missing idempotency key")
	}

	first := httptest.NewRecorder()
	router.ServeHTTP(first, postWithKey("/api/v1/bookings", "mounted", `{"quote_id":"q1"}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 with key, got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	router.ServeHTTP(replay, postWithKey("/api/v1/bookings", "mounted", `{"quote_id":"q1"}`))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", replay.Code)
	}
	if handlerCalls != 1 {
		t.Fatalf("handler executed %d times, expected 1", handlerCalls)
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	var handlerCalled bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, postWithKey("/api/v1/bookings", "", `{"foo":"bar"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	first := httptest.NewRecorder()
	mw(handler).ServeHTTP(first, postWithKey("/api/v1/bookings", "abc", `{"foo":"bar"}`))
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	mw(handler).ServeHTTP(replay, postWithKey("/api/v1/bookings", "abc", `{"foo":"bar"}`))
	if replay.Code != http.StatusAccepted {
		t.Fatalf("expected replay status 202 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if strings.TrimSpace(replay.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), postWithKey("/api/v1/bookings", "xyz", `{"foo":"bar"}`))

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, postWithKey("/api/v1/bookings", "xyz", `{"foo":"diff"}`))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareScopesKeysByRoute(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), postWithKey("/api/v1/bookings", "shared", `{"foo":"bar"}`))
	mw(handler).ServeHTTP(httptest.NewRecorder(), postWithKey("/api/v1/quotes/1/decision", "shared", `{"foo":"bar"}`))

	if calls != 2 {
		t.Fatalf("expected distinct scopes to run handler twice, got %d", calls)
	}
}
