package model

import "testing"

func str(s string) *string { return &s }

func TestFullName(t *testing.T) {
	tests := []struct {
		name string
		p    UserProfile
		want string
	}{
		{"both", UserProfile{FirstName: str("Ada"), LastName: str("Lovelace")}, "Ada Lovelace"},
		{"first only", UserProfile{FirstName: str("Ada")}, "Ada"},
		{"last only", UserProfile{LastName: str("Lovelace")}, "Lovelace"},
		{"none", UserProfile{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.FullName(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCurrentStatusDefaultsToPending(t *testing.T) {
	a := Appointment{}
	if a.CurrentStatus() != StatusPending {
		t.Errorf("nil status: got %s", a.CurrentStatus())
	}
	done := StatusCompleted
	a.Status = &done
	if a.CurrentStatus() != StatusCompleted {
		t.Errorf("got %s", a.CurrentStatus())
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if AppointmentStatus("cancelled").Valid() {
		t.Error("misspelled status accepted")
	}
}
