// Package data is the typed access layer the booking workflow and the HTTP
// handlers go through. Each operation makes at most one backend call and
// takes the caller's identity explicitly.
package data

import (
	"context"
	"errors"
	"fmt"

	"roadside-booking-api/internal/model"
	"roadside-booking-api/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = store.ErrNotFound
)

// AuthError is returned by mutating operations called without an identity.
// It matches ErrNotAuthenticated under errors.Is.
type AuthError struct {
	Action string
}

func (e *AuthError) Error() string {
	return "you must be logged in to " + e.Action
}

func (e *AuthError) Is(target error) bool { return target == ErrNotAuthenticated }

// RemoteError wraps any failure coming back from the backend.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// Backend is the remote store. *store.Store satisfies it.
type Backend interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	ListMechanics(ctx context.Context) ([]model.MechanicListing, error)
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch store.ProfilePatch) (*model.UserProfile, error)
	CreateAppointment(ctx context.Context, userID string, in store.NewAppointment) (*model.Appointment, error)
	ListUserAppointments(ctx context.Context, userID string) ([]model.AppointmentDetail, error)
	CreateReview(ctx context.Context, userID string, in store.NewReview) (*model.Review, error)
}

// Reporter is told about every failure before it is returned to the caller.
type Reporter interface {
	Report(op string, err error)
}

type ReporterFunc func(op string, err error)

func (f ReporterFunc) Report(op string, err error) { f(op, err) }

type Client struct {
	backend  Backend
	reporter Reporter
}

type Option func(*Client)

func WithReporter(r Reporter) Option {
	return func(c *Client) { c.reporter = r }
}

func New(b Backend, opts ...Option) *Client {
	c := &Client{backend: b}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Op names, also used by the notice mapping.
const (
	OpFetchServices         = "fetching services"
	OpFetchMechanics        = "fetching mechanics"
	OpFetchProfile          = "fetching profile"
	OpUpdateProfile         = "updating profile"
	OpCreateAppointment     = "creating appointment"
	OpFetchUserAppointments = "fetching appointments"
	OpCreateReview          = "creating review"
)

func (c *Client) fail(op string, err error) error {
	var ae *AuthError
	if !errors.As(err, &ae) {
		err = &RemoteError{Op: op, Err: err}
	}
	if c.reporter != nil {
		c.reporter.Report(op, err)
	}
	return err
}
