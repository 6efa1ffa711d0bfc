package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"roadside-booking-api/internal/booking"
	"roadside-booking-api/internal/data"
	"roadside-booking-api/internal/model"
	"roadside-booking-api/internal/notice"
	"roadside-booking-api/internal/store"
)

// Users is the account storage behind the /auth endpoints.
type Users interface {
	CreateUser(ctx context.Context, u *model.User, firstName, lastName string) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

type Handler struct {
	data    *data.Client
	booking *booking.Workflow
	users   Users
	secret  string
	log     *slog.Logger

	SecureCookies bool
}

func New(d *data.Client, wf *booking.Workflow, users Users, secret string, log *slog.Logger) *Handler {
	return &Handler{data: d, booking: wf, users: users, secret: secret, log: log}
}

const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps workflow and data-layer errors onto a status and a short
// message. Raw backend errors never reach the client.
func (h *Handler) fail(w http.ResponseWriter, err error, fallback string) {
	var (
		fe booking.FieldErrors
		se *booking.SubmitError
	)
	switch {
	case errors.Is(err, booking.ErrSignInRequired):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    err.Error(),
			"redirect": booking.SignInPath,
		})
	case errors.Is(err, data.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    notice.FromError(err, fallback).Text,
			"redirect": booking.SignInPath,
		})
	case errors.As(err, &fe):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "please correct the highlighted fields",
			"fields": fe,
		})
	case errors.Is(err, booking.ErrSubmitInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &se):
		writeError(w, http.StatusInternalServerError, se.Notice.Text)
	case errors.Is(err, data.ErrNotFound):
		writeError(w, http.StatusNotFound, notice.FromError(err, fallback).Text)
	default:
		writeError(w, http.StatusInternalServerError, notice.FromError(err, fallback).Text)
	}
}
