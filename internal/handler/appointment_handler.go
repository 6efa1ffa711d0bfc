package handler

import (
	"net/http"

	"roadside-booking-api/internal/auth"
	"roadside-booking-api/internal/booking"
	"roadside-booking-api/internal/data"
)

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	out, err := h.data.FetchServices(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to load services")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	out, err := h.data.FetchMechanics(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to load mechanics")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProfile answers null for an anonymous caller.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.data.FetchUserProfile(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.fail(w, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch data.ProfilePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.data.UpdateUserProfile(r.Context(), auth.FromContext(r.Context()), patch)
	if err != nil {
		h.fail(w, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	out, err := h.data.FetchUserAppointments(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.fail(w, err, "Failed to load appointments")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateAppointment is the bare data-layer insert. Browsers go through
// SubmitBooking, which validates and sends the confirmation.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var in data.AppointmentInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := auth.FromContext(r.Context())
	if id.Authenticated() {
		fe := booking.FieldErrors{}
		if in.ServiceID == "" {
			fe["service_id"] = "required"
		}
		if in.ScheduledDate == "" {
			fe["scheduled_date"] = "required"
		}
		if in.Address == "" {
			fe["user_location_address"] = "required"
		}
		if len(fe) > 0 {
			h.fail(w, fe, "")
			return
		}
	}

	a, err := h.data.CreateAppointment(r.Context(), id, in)
	if err != nil {
		h.fail(w, err, "Failed to schedule appointment")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var in data.ReviewInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := auth.FromContext(r.Context())
	if id.Authenticated() && (in.Rating < 1 || in.Rating > 5) {
		h.fail(w, booking.FieldErrors{"rating": "must be between 1 and 5"}, "")
		return
	}
	rv, err := h.data.CreateReview(r.Context(), id, in)
	if err != nil {
		h.fail(w, err, "Failed to submit review")
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

// StartBooking returns the prefilled form. Anonymous callers are sent to
// sign-in before anything is loaded.
func (h *Handler) StartBooking(w http.ResponseWriter, r *http.Request) {
	s, err := h.booking.Start(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.fail(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var f booking.Form
	if err := decode(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.booking.Book(r.Context(), auth.FromContext(r.Context()), f)
	if err != nil {
		h.fail(w, err, "Failed to schedule appointment")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
