package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"roadside-booking-api/internal/middleware"
)

type RouterOptions struct {
	Limiter       *middleware.RateLimiter // sign-in and sign-up; nil disables
	Redis         *redis.Client           // idempotency keys; nil disables
	Confirmations http.Handler            // confirmation function; nil leaves it unmounted
	Ping          func(ctx context.Context) error
}

func (h *Handler) Routes(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ping != nil {
			if err := opts.Ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if opts.Confirmations != nil {
		// carries its own CORS headers
		r.Handle("/functions/v1/send-appointment-confirmation", opts.Confirmations)
	}

	limit := func(next http.Handler) http.Handler { return next }
	if opts.Limiter != nil {
		limit = middleware.RateLimit(opts.Limiter)
	}
	idem := middleware.Idempotency(opts.Redis)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS)

		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/signup", h.SignUp)
			r.With(limit).Post("/signin", h.SignIn)
			r.Post("/refresh", h.Refresh)
			r.With(middleware.Identify(h.secret)).Post("/signout", h.SignOut)
		})

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(middleware.Identify(h.secret))

			r.Get("/services", h.ListServices)
			r.Get("/mechanics", h.ListMechanics)
			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)
			r.Get("/appointments", h.ListAppointments)
			r.With(idem).Post("/appointments", h.CreateAppointment)
			r.Post("/reviews", h.CreateReview)
			r.Get("/booking", h.StartBooking)
			r.With(idem).Post("/booking", h.SubmitBooking)
		})
	})

	return r
}
