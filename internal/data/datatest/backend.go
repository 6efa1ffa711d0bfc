// Package datatest provides an in-memory data.Backend for tests.
package datatest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"roadside-booking-api/internal/model"
	"roadside-booking-api/internal/store"
)

type Backend struct {
	mu           sync.Mutex
	clock        time.Time
	services     []model.Service
	mechanics    []model.MechanicListing
	profiles     map[string]*model.UserProfile
	appointments []model.Appointment
	reviews      []model.Review

	// Fail maps an operation name (the method name) to the error it returns.
	Fail map[string]error
	// Calls counts invocations per method name.
	Calls map[string]int
}

func New() *Backend {
	return &Backend{
		clock:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		profiles: make(map[string]*model.UserProfile),
		Fail:     make(map[string]error),
		Calls:    make(map[string]int),
	}
}

// tick must be called with mu held. Each write gets a strictly later timestamp.
func (b *Backend) tick() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

func (b *Backend) enter(op string) error {
	b.Calls[op]++
	return b.Fail[op]
}

func (b *Backend) AddService(name string) model.Service {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	sv := model.Service{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
	b.services = append(b.services, sv)
	return sv
}

func (b *Backend) AddProfile(p model.UserProfile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	b.profiles[p.ID] = &p
}

func (b *Backend) AddMechanic(m model.MechanicListing) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mechanics = append(b.mechanics, m)
}

// Appointments returns a copy of every stored appointment.
func (b *Backend) Appointments() []model.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Appointment(nil), b.appointments...)
}

func (b *Backend) ListServices(ctx context.Context) ([]model.Service, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListServices"); err != nil {
		return nil, err
	}
	out := append([]model.Service{}, b.services...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *Backend) ListMechanics(ctx context.Context) ([]model.MechanicListing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListMechanics"); err != nil {
		return nil, err
	}
	return append([]model.MechanicListing{}, b.mechanics...), nil
}

func (b *Backend) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("GetProfile"); err != nil {
		return nil, err
	}
	p, ok := b.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (b *Backend) UpdateProfile(ctx context.Context, userID string, patch store.ProfilePatch) (*model.UserProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("UpdateProfile"); err != nil {
		return nil, err
	}
	p, ok := b.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.FirstName != nil {
		p.FirstName = patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = patch.LastName
	}
	if patch.Phone != nil {
		p.Phone = patch.Phone
	}
	if !patch.Empty() {
		p.UpdatedAt = b.tick()
	}
	cp := *p
	return &cp, nil
}

func (b *Backend) CreateAppointment(ctx context.Context, userID string, in store.NewAppointment) (*model.Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreateAppointment"); err != nil {
		return nil, err
	}
	if _, ok := b.profiles[userID]; !ok {
		return nil, fmt.Errorf("appointments_user_id_fkey violation")
	}
	if !b.hasService(in.ServiceID) {
		return nil, fmt.Errorf("appointments_service_id_fkey violation")
	}
	now := b.tick()
	pending := model.StatusPending
	a := model.Appointment{
		ID:                  uuid.New().String(),
		UserID:              userID,
		ServiceID:           in.ServiceID,
		ScheduledDate:       in.ScheduledDate,
		ScheduledTime:       in.ScheduledTime,
		IssueDescription:    in.IssueDescription,
		UserLocationAddress: in.Address,
		UserLat:             in.Lat,
		UserLng:             in.Lng,
		Status:              &pending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	b.appointments = append(b.appointments, a)
	return &a, nil
}

func (b *Backend) hasService(id string) bool {
	for _, sv := range b.services {
		if sv.ID == id {
			return true
		}
	}
	return false
}

func (b *Backend) ListUserAppointments(ctx context.Context, userID string) ([]model.AppointmentDetail, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListUserAppointments"); err != nil {
		return nil, err
	}
	out := []model.AppointmentDetail{}
	for _, a := range b.appointments {
		if a.UserID != userID {
			continue
		}
		d := model.AppointmentDetail{Appointment: a}
		for _, sv := range b.services {
			if sv.ID == a.ServiceID {
				d.Service = &model.ServiceSummary{Name: sv.Name, Description: sv.Description, Category: sv.Category, BasePrice: sv.BasePrice}
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (b *Backend) CreateReview(ctx context.Context, userID string, in store.NewReview) (*model.Review, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreateReview"); err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("reviews_rating_check violation")
	}
	r := model.Review{
		ID:            uuid.New().String(),
		AppointmentID: in.AppointmentID,
		MechanicID:    in.MechanicID,
		UserID:        userID,
		Rating:        in.Rating,
		Comment:       in.Comment,
		CreatedAt:     b.tick(),
	}
	b.reviews = append(b.reviews, r)
	return &r, nil
}
