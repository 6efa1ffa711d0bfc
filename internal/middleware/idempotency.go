package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"roadside-booking-api/internal/auth"
)

const processing = "PROCESSING"

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key,
// and rejects a repeat that arrives while the first is still running. Keys
// are scoped to the caller. A nil client or a missing header passes through.
func Idempotency(rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if rdb == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			idemKey := fmt.Sprintf("idempotency:%s:%s", auth.FromContext(ctx).UserID, key)

			val, err := rdb.Get(ctx, idemKey).Result()
			switch {
			case err == nil && val == processing:
				writeConflict(w)
				return
			case err == nil:
				var sr storedResponse
				if json.Unmarshal([]byte(val), &sr) == nil && sr.Status != 0 {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotency-Hit", "true")
					w.WriteHeader(sr.Status)
					w.Write(sr.Body)
					return
				}
				// unreadable entry: drop it and run the request as new
				if err := rdb.Del(ctx, idemKey).Err(); err != nil {
					next.ServeHTTP(w, r)
					return
				}
			case err != redis.Nil:
				// redis trouble: serve without the guard
				next.ServeHTTP(w, r)
				return
			}

			// short TTL so a crash does not lock the key forever
			acquired, err := rdb.SetNX(ctx, idemKey, processing, 30*time.Second).Result()
			if err != nil || !acquired {
				writeConflict(w)
				return
			}

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// only successful responses are replayed; failures may be retried
			if rec.status >= 200 && rec.status < 300 && json.Valid(rec.buf.Bytes()) {
				b, _ := json.Marshal(storedResponse{Status: rec.status, Body: rec.buf.Bytes()})
				rdb.Set(ctx, idemKey, b, 24*time.Hour)
			} else {
				rdb.Del(ctx, idemKey)
			}
		})
	}
}

func writeConflict(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	w.Write([]byte(`{"error":"request already in progress"}`))
}
