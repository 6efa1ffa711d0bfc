package data_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"roadside-booking-api/internal/auth"
	"roadside-booking-api/internal/data"
	"roadside-booking-api/internal/data/datatest"
	"roadside-booking-api/internal/model"
)

var (
	anon  = auth.Identity{}
	alice = auth.Identity{UserID: "user-alice", FirstName: "Alice"}
	bob   = auth.Identity{UserID: "user-bob"}
)

func strp(s string) *string { return &s }

func setup(t *testing.T) (*data.Client, *datatest.Backend, model.Service, *[]string) {
	t.Helper()
	b := datatest.New()
	sv := b.AddService("Flat Tire Change")
	b.AddProfile(model.UserProfile{ID: alice.UserID, FirstName: strp("Alice"), LastName: strp("Smith"), Email: strp("alice@example.com")})
	b.AddProfile(model.UserProfile{ID: bob.UserID, FirstName: strp("Bob")})

	var reported []string
	c := data.New(b, data.WithReporter(data.ReporterFunc(func(op string, err error) {
		reported = append(reported, op)
	})))
	return c, b, sv, &reported
}

func input(serviceID string) data.AppointmentInput {
	return data.AppointmentInput{
		ServiceID:     serviceID,
		ScheduledDate: "2025-03-01",
		ScheduledTime: "10:00",
		Address:       "12 Main St",
	}
}

func TestCreateAppointmentAttributesCaller(t *testing.T) {
	c, b, sv, _ := setup(t)

	a, err := c.CreateAppointment(context.Background(), alice, input(sv.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.UserID != alice.UserID {
		t.Errorf("attributed to %s", a.UserID)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Error("missing server-assigned fields")
	}
	if a.CurrentStatus() != model.StatusPending {
		t.Errorf("status: %s", a.CurrentStatus())
	}
	if got := b.Appointments(); len(got) != 1 || got[0].UserID != alice.UserID {
		t.Errorf("stored rows: %+v", got)
	}
}

func TestMutationsRequireIdentity(t *testing.T) {
	c, b, sv, reported := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{"appointment", func() error {
			_, err := c.CreateAppointment(ctx, anon, input(sv.ID))
			return err
		}, "you must be logged in to book appointments"},
		{"review", func() error {
			_, err := c.CreateReview(ctx, anon, data.ReviewInput{AppointmentID: "a", MechanicID: "m", Rating: 5})
			return err
		}, "you must be logged in to leave reviews"},
		{"profile", func() error {
			_, err := c.UpdateUserProfile(ctx, anon, data.ProfilePatch{Phone: strp("1")})
			return err
		}, "you must be logged in to update your profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, data.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("message: %q", err.Error())
			}
		})
	}

	if len(b.Calls) != 0 {
		t.Errorf("backend was called: %v", b.Calls)
	}
	if len(b.Appointments()) != 0 {
		t.Error("row written without identity")
	}
	if len(*reported) != 3 {
		t.Errorf("expected 3 reports, got %v", *reported)
	}
}

func TestFetchUserAppointmentsAnonymous(t *testing.T) {
	c, b, _, reported := setup(t)

	got, err := c.FetchUserAppointments(context.Background(), anon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %v", got)
	}
	if b.Calls["ListUserAppointments"] != 0 || len(*reported) != 0 {
		t.Error("anonymous fetch should not touch the backend or report")
	}
}

func TestFetchUserAppointmentsNewestFirst(t *testing.T) {
	c, _, sv, _ := setup(t)
	ctx := context.Background()

	var ids []string
	for _, tm := range []string{"08:00", "09:00", "10:00"} {
		in := input(sv.ID)
		in.ScheduledTime = tm
		a, err := c.CreateAppointment(ctx, alice, in)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, a.ID)
	}
	// someone else's booking must not show up
	if _, err := c.CreateAppointment(ctx, bob, input(sv.ID)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := c.FetchUserAppointments(ctx, alice)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var order []string
	for _, d := range got {
		order = append(order, d.ID)
	}
	want := []string{ids[2], ids[1], ids[0]}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order: got %v want %v", order, want)
	}
	if got[0].Service == nil || got[0].Service.Name != sv.Name {
		t.Errorf("service detail: %+v", got[0].Service)
	}
}

func TestFetchUserProfile(t *testing.T) {
	c, _, _, reported := setup(t)
	ctx := context.Background()

	p, err := c.FetchUserProfile(ctx, anon)
	if err != nil || p != nil {
		t.Fatalf("anonymous: got %v, %v", p, err)
	}

	first, err := c.FetchUserProfile(ctx, alice)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, err := c.FetchUserProfile(ctx, alice)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated fetch differs: %+v vs %+v", first, second)
	}

	_, err = c.FetchUserProfile(ctx, auth.Identity{UserID: "ghost"})
	if !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var re *data.RemoteError
	if !errors.As(err, &re) || re.Op != data.OpFetchProfile {
		t.Errorf("expected RemoteError for %q, got %v", data.OpFetchProfile, err)
	}
	if len(*reported) != 1 || (*reported)[0] != data.OpFetchProfile {
		t.Errorf("reports: %v", *reported)
	}
}

func TestUpdateUserProfilePartial(t *testing.T) {
	c, _, _, _ := setup(t)

	p, err := c.UpdateUserProfile(context.Background(), alice, data.ProfilePatch{Phone: strp("555-0100")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Phone == nil || *p.Phone != "555-0100" {
		t.Errorf("phone: %v", p.Phone)
	}
	if p.FullName() != "Alice Smith" {
		t.Errorf("name changed: %q", p.FullName())
	}
}

func TestRemoteFailureReportedAndReturned(t *testing.T) {
	c, b, _, reported := setup(t)
	boom := errors.New("connection refused")
	b.Fail["ListServices"] = boom

	_, err := c.FetchServices(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if len(*reported) != 1 || (*reported)[0] != data.OpFetchServices {
		t.Errorf("reports: %v", *reported)
	}
}

func TestCreateReview(t *testing.T) {
	c, _, _, _ := setup(t)

	r, err := c.CreateReview(context.Background(), alice, data.ReviewInput{AppointmentID: "a1", MechanicID: "m1", Rating: 4})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if r.UserID != alice.UserID {
		t.Errorf("attributed to %s", r.UserID)
	}
}
