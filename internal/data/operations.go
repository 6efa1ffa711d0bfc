package data

import (
	"context"

	"roadside-booking-api/internal/auth"
	"roadside-booking-api/internal/model"
	"roadside-booking-api/internal/store"
)

type AppointmentInput struct {
	ServiceID        string   `json:"service_id"`
	ScheduledDate    string   `json:"scheduled_date"`
	ScheduledTime    string   `json:"scheduled_time"`
	Address          string   `json:"user_location_address"`
	IssueDescription *string  `json:"issue_description"`
	Lat              *float64 `json:"user_lat"`
	Lng              *float64 `json:"user_lng"`
}

type ReviewInput struct {
	AppointmentID string  `json:"appointment_id"`
	MechanicID    string  `json:"mechanic_id"`
	Rating        int     `json:"rating"`
	Comment       *string `json:"comment"`
}

type ProfilePatch = store.ProfilePatch

func (c *Client) FetchServices(ctx context.Context) ([]model.Service, error) {
	out, err := c.backend.ListServices(ctx)
	if err != nil {
		return nil, c.fail(OpFetchServices, err)
	}
	return out, nil
}

func (c *Client) FetchMechanics(ctx context.Context) ([]model.MechanicListing, error) {
	out, err := c.backend.ListMechanics(ctx)
	if err != nil {
		return nil, c.fail(OpFetchMechanics, err)
	}
	return out, nil
}

// FetchUserProfile returns nil, nil for an anonymous caller. A missing row
// for an authenticated caller is an error.
func (c *Client) FetchUserProfile(ctx context.Context, id auth.Identity) (*model.UserProfile, error) {
	if !id.Authenticated() {
		return nil, nil
	}
	p, err := c.backend.GetProfile(ctx, id.UserID)
	if err != nil {
		return nil, c.fail(OpFetchProfile, err)
	}
	return p, nil
}

// CreateAppointment always attributes the row to id.UserID.
func (c *Client) CreateAppointment(ctx context.Context, id auth.Identity, in AppointmentInput) (*model.Appointment, error) {
	if !id.Authenticated() {
		return nil, c.fail(OpCreateAppointment, &AuthError{Action: "book appointments"})
	}
	a, err := c.backend.CreateAppointment(ctx, id.UserID, store.NewAppointment{
		ServiceID:        in.ServiceID,
		ScheduledDate:    in.ScheduledDate,
		ScheduledTime:    in.ScheduledTime,
		Address:          in.Address,
		IssueDescription: in.IssueDescription,
		Lat:              in.Lat,
		Lng:              in.Lng,
	})
	if err != nil {
		return nil, c.fail(OpCreateAppointment, err)
	}
	return a, nil
}

// FetchUserAppointments returns an empty list for an anonymous caller.
func (c *Client) FetchUserAppointments(ctx context.Context, id auth.Identity) ([]model.AppointmentDetail, error) {
	if !id.Authenticated() {
		return []model.AppointmentDetail{}, nil
	}
	out, err := c.backend.ListUserAppointments(ctx, id.UserID)
	if err != nil {
		return nil, c.fail(OpFetchUserAppointments, err)
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, id auth.Identity, in ReviewInput) (*model.Review, error) {
	if !id.Authenticated() {
		return nil, c.fail(OpCreateReview, &AuthError{Action: "leave reviews"})
	}
	r, err := c.backend.CreateReview(ctx, id.UserID, store.NewReview{
		AppointmentID: in.AppointmentID,
		MechanicID:    in.MechanicID,
		Rating:        in.Rating,
		Comment:       in.Comment,
	})
	if err != nil {
		return nil, c.fail(OpCreateReview, err)
	}
	return r, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, id auth.Identity, patch ProfilePatch) (*model.UserProfile, error) {
	if !id.Authenticated() {
		return nil, c.fail(OpUpdateProfile, &AuthError{Action: "update your profile"})
	}
	p, err := c.backend.UpdateProfile(ctx, id.UserID, patch)
	if err != nil {
		return nil, c.fail(OpUpdateProfile, err)
	}
	return p, nil
}
