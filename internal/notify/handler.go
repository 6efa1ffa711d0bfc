package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"roadside-booking-api/internal/metrics"
)

var errNoEmail = errors.New("user email is required")

// Handler is the confirmation function: it renders and sends the
// confirmation email for one booking.
type Handler struct {
	mailer Mailer
	from   string
	brand  string
	log    *slog.Logger
}

func NewHandler(m Mailer, from, brand string, log *slog.Logger) *Handler {
	return &Handler{mailer: m, from: from, brand: brand, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		h.fail(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var c Confirmation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&c); err != nil {
		h.fail(w, http.StatusInternalServerError, errors.New("invalid request body"))
		return
	}
	if c.User.Email == "" {
		h.fail(w, http.StatusInternalServerError, errNoEmail)
		return
	}

	html, err := renderConfirmation(c, h.brand)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}

	h.log.Info("sending confirmation email", "to", c.User.Email)
	rc, err := h.mailer.Send(r.Context(), Email{
		From:    h.from,
		To:      []string{c.User.Email},
		Subject: confirmationSubject,
		HTML:    html,
	})
	if err != nil {
		metrics.IncEmail("failed")
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	metrics.IncEmail("sent")
	h.log.Info("confirmation email sent", "id", rc.ID)

	hdr.Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rc)
}

func (h *Handler) fail(w http.ResponseWriter, code int, err error) {
	h.log.Error("send confirmation failed", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
