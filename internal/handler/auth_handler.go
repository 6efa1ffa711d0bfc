package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"roadside-booking-api/internal/auth"
	"roadside-booking-api/internal/middleware"
	"roadside-booking-api/internal/model"
	"roadside-booking-api/internal/store"
)

const (
	refreshCookie = "refresh_token"
	refreshTTL    = 7 * 24 * time.Hour
)

type credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type session struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password too short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := &model.User{Email: req.Email, PasswordHash: hash}
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if err := h.users.CreateUser(r.Context(), u, first, last); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// don't reveal which emails exist
			writeError(w, http.StatusConflict, "registration failed")
			return
		}
		h.log.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.issue(w, r, auth.Identity{UserID: u.ID, FirstName: first, LastName: last}, http.StatusCreated)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := h.users.UserByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issue(w, r, h.identityFor(r, u.ID), http.StatusOK)
}

// Refresh rotates the refresh token. Presenting a revoked token revokes
// every token of that user.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if c, err := r.Cookie(refreshCookie); err == nil {
		raw = c.Value
	} else {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = decode(w, r, &body)
		raw = body.RefreshToken
	}
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	ctx := r.Context()
	rt, err := h.users.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(raw))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if rt.Revoked {
		h.revokeReused(r, rt.UserID)
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if !rt.Usable(time.Now()) {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.users.RotateRefreshToken(ctx, rt.ID, rt.UserID, newHash, time.Now().Add(refreshTTL)); err != nil {
		if errors.Is(err, store.ErrTokenReused) {
			h.revokeReused(r, rt.UserID)
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.log.Error("rotate refresh token", "user", rt.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	id := h.identityFor(r, rt.UserID)
	access, err := auth.MakeToken(id, h.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.setCookies(w, access, newRaw)
	writeJSON(w, http.StatusOK, session{
		UserID: id.UserID, AccessToken: access, RefreshToken: newRaw,
		FirstName: id.FirstName, LastName: id.LastName,
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if !id.Authenticated() {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if err := h.users.RevokeAllRefreshTokens(r.Context(), id.UserID); err != nil {
		h.log.Error("revoke tokens", "user", id.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.clearCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// revokeReused treats a replayed refresh token as stolen.
func (h *Handler) revokeReused(r *http.Request, userID string) {
	h.log.Warn("revoked refresh token reused", "user", userID)
	if err := h.users.RevokeAllRefreshTokens(r.Context(), userID); err != nil {
		h.log.Error("revoke tokens", "user", userID, "error", err)
	}
}

// identityFor fills the token's display names from the profile. A missing
// profile still yields a usable token.
func (h *Handler) identityFor(r *http.Request, userID string) auth.Identity {
	id := auth.Identity{UserID: userID}
	p, err := h.data.FetchUserProfile(r.Context(), id)
	if err != nil || p == nil {
		return id
	}
	if p.FirstName != nil {
		id.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		id.LastName = *p.LastName
	}
	return id
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, id auth.Identity, code int) {
	access, err := auth.MakeToken(id, h.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := h.users.CreateRefreshToken(r.Context(), id.UserID, hash, time.Now().Add(refreshTTL)); err != nil {
		h.log.Error("store refresh token", "user", id.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.setCookies(w, access, raw)
	writeJSON(w, code, session{
		UserID: id.UserID, AccessToken: access, RefreshToken: raw,
		FirstName: id.FirstName, LastName: id.LastName,
	})
}

func (h *Handler) setCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name: middleware.AccessCookie, Value: access, Path: "/",
		MaxAge: int(auth.AccessTTL.Seconds()), HttpOnly: true, Secure: h.SecureCookies, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: refreshCookie, Value: refresh, Path: "/auth/",
		MaxAge: int(refreshTTL.Seconds()), HttpOnly: true, Secure: h.SecureCookies, SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{{middleware.AccessCookie, "/"}, {refreshCookie, "/auth/"}} {
		http.SetCookie(w, &http.Cookie{
			Name: c.name, Value: "", Path: c.path, MaxAge: -1, HttpOnly: true, Secure: h.SecureCookies,
		})
	}
}
