package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"roadside-booking-api/internal/auth"
	"roadside-booking-api/internal/cache"
	"roadside-booking-api/internal/middleware"
)

const secret = "test-secret"

func whoami(got *auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentify(t *testing.T) {
	tok, _ := auth.MakeToken(auth.Identity{UserID: "u1", FirstName: "Jo"}, secret)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
		wantUser string
	}{
		{"anonymous", func(r *http.Request) {}, http.StatusOK, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK, "u1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: tok}) }, http.StatusOK, "u1"},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+tok) }, http.StatusOK, "u1"},
		{"basic scheme is anonymous", func(r *http.Request) { r.Header.Set("Authorization", "Basic dXNlcjpwYXNz") }, http.StatusOK, ""},
		{"basic scheme falls back to cookie", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			r.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: tok})
		}, http.StatusOK, "u1"},
		{"bare scheme", func(r *http.Request) { r.Header.Set("Authorization", "Bearer") }, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got auth.Identity
			h := middleware.Identify(secret)(whoami(&got))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code: %d", rec.Code)
			}
			if got.UserID != tt.wantUser {
				t.Errorf("user: %q", got.UserID)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	h := middleware.RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	got := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		got = append(got, rec.Code)
	}
	if got[0] != 200 || got[1] != 200 || got[2] != http.StatusTooManyRequests {
		t.Errorf("codes: %v", got)
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("second client limited: %d", rec.Code)
	}
}

func TestUnaryRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	ic := middleware.UnaryRateLimit(rl)
	next := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	if _, err := ic(context.Background(), nil, info, next); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := ic(context.Background(), nil, info, next)
	if s, _ := status.FromError(err); s.Code() != codes.ResourceExhausted {
		t.Errorf("expected ResourceExhausted, got %v", err)
	}
}

func TestCORSPreflight(t *testing.T) {
	var called bool
	h := middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/booking", nil)
	req.Header.Set("Origin", "https://roadside.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if called {
		t.Error("preflight reached the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://roadside.example" {
		t.Errorf("origin: %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestIdempotencyWithoutRedis(t *testing.T) {
	var n int32
	h := middleware.Idempotency(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
	}))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Idempotency-Key", "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if n != 2 {
		t.Errorf("expected passthrough, handler ran %d times", n)
	}
}

func TestIdempotencyReplay(t *testing.T) {
	_ = godotenv.Load("../../.env")
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := cache.NewClient(context.Background(), cache.Config{Addr: addr})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	var n int32
	h := middleware.Idempotency(rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"a1"}`))
	}))

	key := uuid.New().String()
	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", nil)
		req.Header.Set("Idempotency-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: code %d", i, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if n != 1 {
		t.Errorf("handler ran %d times", n)
	}
	if bodies[0] != bodies[1] {
		t.Errorf("replayed body differs: %q vs %q", bodies[0], bodies[1])
	}
}

func TestIdempotencyCorruptEntry(t *testing.T) {
	_ = godotenv.Load("../../.env")
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := cache.NewClient(context.Background(), cache.Config{Addr: addr})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	var n int32
	h := middleware.Idempotency(rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"a1"}`))
	}))

	key := uuid.New().String()
	// anonymous caller, so the user part of the key is empty
	stored := "idempotency::" + key
	if err := rdb.Set(context.Background(), stored, "{not json", time.Hour).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() { rdb.Del(context.Background(), stored) })

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", nil)
		req.Header.Set("Idempotency-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: code %d %s", i, rec.Code, rec.Body.String())
		}
	}
	if n != 1 {
		t.Errorf("handler ran %d times, want 1 then a replay", n)
	}
}
