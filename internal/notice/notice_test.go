package notice

import (
	"errors"
	"fmt"
	"testing"

	"roadside-booking-api/internal/data"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Notice
	}{
		{"auth", &data.AuthError{Action: "book appointments"}, Fail("you must be logged in to book appointments")},
		{"remote", &data.RemoteError{Op: data.OpFetchServices, Err: errors.New("pq: secret detail")}, Fail("Error fetching services")},
		{"not found", &data.RemoteError{Op: data.OpFetchProfile, Err: data.ErrNotFound}, Fail("Fetching profile: not found")},
		{"wrapped remote", fmt.Errorf("submit: %w", &data.RemoteError{Op: data.OpCreateAppointment, Err: errors.New("x")}), Fail("Error creating appointment")},
		{"unknown", errors.New("boom"), Fail("something went wrong")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err, "something went wrong"); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
