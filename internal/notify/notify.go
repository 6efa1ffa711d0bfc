package notify

import (
	"context"
	"fmt"
	"time"
)

// Confirmation is the payload the confirmation function accepts.
type Confirmation struct {
	User        Recipient `json:"user"`
	Appointment Details   `json:"appointment"`
}

type Recipient struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Details struct {
	ServiceName   string `json:"serviceName"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Address       string `json:"address"`
}

// Receipt is the provider's acknowledgement of a sent email.
type Receipt struct {
	ID string `json:"id"`
}

// Dispatcher sends one confirmation. Callers make a single attempt.
type Dispatcher interface {
	Dispatch(ctx context.Context, c Confirmation) (*Receipt, error)
}

type DispatcherFunc func(ctx context.Context, c Confirmation) (*Receipt, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, c Confirmation) (*Receipt, error) {
	return f(ctx, c)
}

// DispatchError is a non-200 answer from the confirmation function.
type DispatchError struct {
	Status  int
	Message string
}

func (e *DispatchError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("confirmation function returned %d", e.Status)
	}
	return fmt.Sprintf("confirmation function returned %d: %s", e.Status, e.Message)
}

// FormatDate renders a YYYY-MM-DD date as M/D/YYYY. Anything unparseable is
// passed through untouched.
func FormatDate(d string) string {
	t, err := time.Parse(time.DateOnly, d)
	if err != nil {
		return d
	}
	return t.Format("1/2/2006")
}
