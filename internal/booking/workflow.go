// Package booking runs the appointment booking flow: sign-in guard, form
// prefill, validation, submission and the best-effort confirmation email.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"roadside-booking-api/internal/auth"
	"roadside-booking-api/internal/data"
	"roadside-booking-api/internal/metrics"
	"roadside-booking-api/internal/model"
	"roadside-booking-api/internal/notice"
	"roadside-booking-api/internal/notify"
)

const (
	SignInPath  = "/login"
	AccountPath = "/account"
)

var (
	ErrSignInRequired   = errors.New("please sign in to book an appointment")
	ErrSubmitInProgress = errors.New("a booking is already being submitted")
)

const (
	msgLoadFailed   = "Failed to load necessary data"
	msgSubmitFailed = "Failed to schedule appointment"
	msgEmailFailed  = "Appointment scheduled, but confirmation email failed to send"
	msgBooked       = "Appointment scheduled successfully!"
)

// Data is the part of the data layer the workflow needs.
type Data interface {
	FetchServices(ctx context.Context) ([]model.Service, error)
	FetchUserProfile(ctx context.Context, id auth.Identity) (*model.UserProfile, error)
	CreateAppointment(ctx context.Context, id auth.Identity, in data.AppointmentInput) (*model.Appointment, error)
}

type Workflow struct {
	data       Data
	dispatcher notify.Dispatcher
	log        *slog.Logger

	// user ID -> submission in flight
	inFlight sync.Map
}

func New(d Data, disp notify.Dispatcher, log *slog.Logger) *Workflow {
	return &Workflow{data: d, dispatcher: disp, log: log}
}

// SubmitError is a failed submission. Notice is what the user sees.
type SubmitError struct {
	Notice notice.Notice
	Err    error
}

func (e *SubmitError) Error() string { return e.Notice.Text }
func (e *SubmitError) Unwrap() error { return e.Err }

// Session is one form session. It is owned by a single user and holds the
// prefetched catalog and profile used for notification.
type Session struct {
	wf *Workflow
	id auth.Identity

	Services []model.Service    `json:"services"`
	Profile  *model.UserProfile `json:"profile"`
	Form     Form               `json:"form"`
	Notices  []notice.Notice    `json:"notices,omitempty"`
}

// Outcome is a successful submission.
type Outcome struct {
	Appointment *model.Appointment `json:"appointment"`
	Redirect    string             `json:"redirect"`
	Notices     []notice.Notice    `json:"notices"`
}

// Start opens a form session. An anonymous caller gets ErrSignInRequired
// and nothing is fetched.
func (w *Workflow) Start(ctx context.Context, id auth.Identity) (*Session, error) {
	if !id.Authenticated() {
		return nil, ErrSignInRequired
	}

	s := &Session{wf: w, id: id}

	var (
		g        errgroup.Group
		services []model.Service
		profile  *model.UserProfile
	)
	g.Go(func() error {
		var err error
		services, err = w.data.FetchServices(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = w.data.FetchUserProfile(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		w.log.Error("prefill failed", "user", id.UserID, "error", err)
		s.Notices = append(s.Notices, notice.Fail(msgLoadFailed))
	}

	if services == nil {
		services = []model.Service{}
	}
	s.Services = services
	s.Profile = profile
	if profile != nil {
		s.Form.Name = profile.FullName()
		s.Form.Email = deref(profile.Email)
		s.Form.Phone = deref(profile.Phone)
	}
	return s, nil
}

// Submit validates f, persists the appointment and then tries once to send
// the confirmation email. Field errors come back as FieldErrors and never
// reach the data layer. A second submit by the same user while one is in
// flight gets ErrSubmitInProgress.
func (s *Session) Submit(ctx context.Context, f Form) (*Outcome, error) {
	if !s.id.Authenticated() {
		return nil, ErrSignInRequired
	}
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	if !s.wf.acquire(s.id.UserID) {
		return nil, ErrSubmitInProgress
	}
	defer s.wf.release(s.id.UserID)
	return s.create(ctx, f)
}

func prepare(f Form) (Form, error) {
	f = f.normalized()
	if fe := f.Validate(); fe != nil {
		metrics.IncBooking(metrics.Invalid)
		return f, fe
	}
	return f, nil
}

func (w *Workflow) acquire(userID string) bool {
	if _, busy := w.inFlight.LoadOrStore(userID, struct{}{}); busy {
		metrics.IncBooking(metrics.Duplicate)
		return false
	}
	return true
}

func (w *Workflow) release(userID string) { w.inFlight.Delete(userID) }

// create runs with the user's in-flight slot held.
func (s *Session) create(ctx context.Context, f Form) (*Outcome, error) {
	in := data.AppointmentInput{
		ServiceID:     f.Service,
		ScheduledDate: f.Date,
		ScheduledTime: f.Time,
		Address:       f.Address,
		Lat:           f.Lat,
		Lng:           f.Lng,
	}
	if f.Details != "" {
		in.IssueDescription = &f.Details
	}

	appt, err := s.wf.data.CreateAppointment(ctx, s.id, in)
	if err != nil {
		metrics.IncBooking(metrics.Failed)
		s.wf.log.Error("create appointment failed", "user", s.id.UserID, "error", err)
		return nil, &SubmitError{Notice: notice.FromError(err, msgSubmitFailed), Err: err}
	}
	metrics.IncBooking(metrics.Booked)

	out := &Outcome{Appointment: appt, Redirect: AccountPath}
	if n, ok := s.confirm(ctx, appt); !ok {
		out.Notices = append(out.Notices, n)
	}
	out.Notices = append(out.Notices, notice.Successf(msgBooked))

	s.Form = Form{}
	return out, nil
}

// confirm sends the confirmation email. It reports false with a warning
// notice only when the dispatch itself failed; a skipped dispatch is logged.
func (s *Session) confirm(ctx context.Context, appt *model.Appointment) (notice.Notice, bool) {
	log := s.wf.log.With("appointment", appt.ID)

	sv := s.service(appt.ServiceID)
	if s.Profile == nil || sv == nil {
		log.Warn("skipping confirmation email: missing profile or service")
		metrics.IncConfirmation("skipped")
		return notice.Notice{}, true
	}

	rc, err := s.wf.dispatcher.Dispatch(ctx, notify.Confirmation{
		User: notify.Recipient{
			Email:     deref(s.Profile.Email),
			FirstName: deref(s.Profile.FirstName),
			LastName:  deref(s.Profile.LastName),
		},
		Appointment: notify.Details{
			ServiceName:   sv.Name,
			ScheduledDate: notify.FormatDate(appt.ScheduledDate),
			ScheduledTime: appt.ScheduledTime,
			Address:       appt.UserLocationAddress,
		},
	})
	if err != nil {
		log.Error("confirmation email failed", "error", err)
		metrics.IncConfirmation("failed")
		return notice.Warn(msgEmailFailed), false
	}
	log.Info("confirmation email sent", "receipt", rc.ID)
	metrics.IncConfirmation("sent")
	return notice.Notice{}, true
}

func (s *Session) service(id string) *model.Service {
	for i := range s.Services {
		if s.Services[i].ID == id {
			return &s.Services[i]
		}
	}
	return nil
}

// Book runs a whole session in one call: start, prefill, submit. The
// user's in-flight slot is held for all of it, so concurrent requests from
// the same account cannot double-book.
func (w *Workflow) Book(ctx context.Context, id auth.Identity, f Form) (*Outcome, error) {
	if !id.Authenticated() {
		return nil, ErrSignInRequired
	}
	if !w.acquire(id.UserID) {
		return nil, ErrSubmitInProgress
	}
	defer w.release(id.UserID)

	s, err := w.Start(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err = prepare(f)
	if err != nil {
		return nil, err
	}
	out, err := s.create(ctx, f)
	if err != nil {
		return nil, err
	}
	out.Notices = append(s.Notices, out.Notices...)
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
