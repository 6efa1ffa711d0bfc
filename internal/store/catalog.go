package store

import (
	"context"

	"roadside-booking-api/internal/model"
)

func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, category, base_price::float8, estimated_duration,
		        created_at, updated_at
		 FROM services
		 ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var sv model.Service
		if err := rows.Scan(
			&sv.ID, &sv.Name, &sv.Description, &sv.Category, &sv.BasePrice, &sv.EstimatedDuration,
			&sv.CreatedAt, &sv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// CreateService is for operators and seeding; the booking flow never writes the catalog.
func (s *Store) CreateService(ctx context.Context, sv *model.Service) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO services (name, description, category, base_price, estimated_duration)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, created_at, updated_at`,
		sv.Name, sv.Description, sv.Category, sv.BasePrice, sv.EstimatedDuration,
	).Scan(&sv.ID, &sv.CreatedAt, &sv.UpdatedAt)
}

func (s *Store) ListMechanics(ctx context.Context) ([]model.MechanicListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.profile_id, m.specialization, m.experience_years, m.hourly_rate::float8,
		        m.is_available, m.location_address, m.lat, m.lng, m.created_at, m.updated_at,
		        p.id, p.first_name, p.last_name, p.email, p.phone
		 FROM mechanics m
		 LEFT JOIN profiles p ON p.id = m.profile_id
		 ORDER BY m.created_at, m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MechanicListing{}
	for rows.Next() {
		var (
			m         model.MechanicListing
			profileID *string
			ps        model.ProfileSummary
		)
		if err := rows.Scan(
			&m.ID, &m.ProfileID, &m.Specialization, &m.ExperienceYears, &m.HourlyRate,
			&m.IsAvailable, &m.LocationAddress, &m.Lat, &m.Lng, &m.CreatedAt, &m.UpdatedAt,
			&profileID, &ps.FirstName, &ps.LastName, &ps.Email, &ps.Phone,
		); err != nil {
			return nil, err
		}
		if profileID != nil {
			m.Profile = &ps
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateMechanic(ctx context.Context, m *model.Mechanic) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO mechanics (profile_id, specialization, experience_years, hourly_rate,
		                        is_available, location_address, lat, lng)
		 VALUES ($1,$2,$3,$4,COALESCE($5, TRUE),$6,$7,$8)
		 RETURNING id, is_available, created_at, updated_at`,
		m.ProfileID, m.Specialization, m.ExperienceYears, m.HourlyRate,
		m.IsAvailable, m.LocationAddress, m.Lat, m.Lng,
	).Scan(&m.ID, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
}
