package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roadside",
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	confirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roadside",
			Name:      "confirmation_dispatch_total",
			Help:      "Confirmation email dispatch attempts by outcome.",
		},
		[]string{"outcome"},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roadside",
			Name:      "confirmation_emails_total",
			Help:      "Confirmation emails handed to the provider, by outcome.",
		},
		[]string{"outcome"},
	)

	catalogCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roadside",
			Name:      "catalog_cache_total",
			Help:      "Service catalog cache lookups.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookings, confirmations, emails, catalogCache)
	})
}

// Booking outcomes.
const (
	Booked    = "booked"
	Invalid   = "invalid"
	Failed    = "failed"
	Duplicate = "duplicate"
)

func IncBooking(outcome string) { bookings.WithLabelValues(outcome).Inc() }

func IncConfirmation(outcome string) { confirmations.WithLabelValues(outcome).Inc() }

func IncEmail(outcome string) { emails.WithLabelValues(outcome).Inc() }

func IncCatalogCache(hit bool) {
	if hit {
		catalogCache.WithLabelValues("hit").Inc()
		return
	}
	catalogCache.WithLabelValues("miss").Inc()
}
