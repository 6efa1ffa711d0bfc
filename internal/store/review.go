package store

import (
	"context"

	"roadside-booking-api/internal/model"
)

type NewReview struct {
	AppointmentID string
	MechanicID    string
	Rating        int
	Comment       *string
}

func (s *Store) CreateReview(ctx context.Context, userID string, in NewReview) (*model.Review, error) {
	r := &model.Review{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reviews (appointment_id, mechanic_id, user_id, rating, comment)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, appointment_id, mechanic_id, user_id, rating, comment, created_at`,
		in.AppointmentID, in.MechanicID, userID, in.Rating, in.Comment,
	).Scan(&r.ID, &r.AppointmentID, &r.MechanicID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}
