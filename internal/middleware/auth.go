package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"roadside-booking-api/internal/auth"
)

const AccessCookie = "access_token"

// Identify resolves the caller from "Authorization: Bearer <jwt>" or the
// access_token cookie. No token means an anonymous caller; a token that
// does not verify is rejected so the client knows to refresh. Other
// Authorization schemes are not ours and count as no token.
func Identify(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if c, err := r.Cookie(AccessCookie); err == nil {
					raw = c.Value
				}
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "bad token"})
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

// bearerToken returns the credentials of a Bearer Authorization header. The
// scheme is case-insensitive.
func bearerToken(r *http.Request) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
