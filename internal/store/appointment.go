package store

import (
	"context"
	"fmt"

	"roadside-booking-api/internal/model"
)

// NewAppointment is the insertable part of an appointment. The owner is
// passed separately so callers cannot smuggle in a different user id.
type NewAppointment struct {
	ServiceID        string
	ScheduledDate    string
	ScheduledTime    string
	Address          string
	IssueDescription *string
	Lat              *float64
	Lng              *float64
}

const appointmentCols = `a.id, a.user_id, a.service_id, a.mechanic_id,
	to_char(a.scheduled_date, 'YYYY-MM-DD'), a.scheduled_time, a.issue_description,
	a.user_location_address, a.user_lat, a.user_lng, a.status, a.created_at, a.updated_at`

func appointmentDest(a *model.Appointment, status **string) []any {
	return []any{
		&a.ID, &a.UserID, &a.ServiceID, &a.MechanicID,
		&a.ScheduledDate, &a.ScheduledTime, &a.IssueDescription,
		&a.UserLocationAddress, &a.UserLat, &a.UserLng, status, &a.CreatedAt, &a.UpdatedAt,
	}
}

// setStatus copies the scanned status column. A value outside the known
// set means the schema and the code disagree.
func setStatus(a *model.Appointment, status *string) error {
	if status == nil {
		return nil
	}
	st := model.AppointmentStatus(*status)
	if !st.Valid() {
		return fmt.Errorf("appointment %s: unknown status %q", a.ID, *status)
	}
	a.Status = &st
	return nil
}

func (s *Store) CreateAppointment(ctx context.Context, userID string, in NewAppointment) (*model.Appointment, error) {
	a := &model.Appointment{}
	var status *string
	err := s.pool.QueryRow(ctx,
		`WITH a AS (
			INSERT INTO appointments (user_id, service_id, scheduled_date, scheduled_time,
			                          user_location_address, issue_description, user_lat, user_lng)
			VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
			RETURNING *
		 )
		 SELECT `+appointmentCols+` FROM a`,
		userID, in.ServiceID, in.ScheduledDate, in.ScheduledTime,
		in.Address, in.IssueDescription, in.Lat, in.Lng,
	).Scan(appointmentDest(a, &status)...)
	if err != nil {
		return nil, err
	}
	if err := setStatus(a, status); err != nil {
		return nil, err
	}
	return a, nil
}

// ListUserAppointments returns the user's appointments with service and
// mechanic details, newest first.
func (s *Store) ListUserAppointments(ctx context.Context, userID string) ([]model.AppointmentDetail, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+`,
		        sv.name, sv.description, sv.category, sv.base_price::float8,
		        m.id, m.specialization, m.hourly_rate::float8,
		        mp.id, mp.first_name, mp.last_name
		 FROM appointments a
		 LEFT JOIN services sv ON sv.id = a.service_id
		 LEFT JOIN mechanics m ON m.id = a.mechanic_id
		 LEFT JOIN profiles mp ON mp.id = m.profile_id
		 WHERE a.user_id = $1
		 ORDER BY a.created_at DESC, a.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AppointmentDetail{}
	for rows.Next() {
		var (
			d             model.AppointmentDetail
			status        *string
			svName        *string
			sv            model.ServiceSummary
			mechID        *string
			mech          model.MechanicSummary
			mechProfileID *string
			mechName      model.ProfileName
		)
		dest := appointmentDest(&d.Appointment, &status)
		dest = append(dest,
			&svName, &sv.Description, &sv.Category, &sv.BasePrice,
			&mechID, &mech.Specialization, &mech.HourlyRate,
			&mechProfileID, &mechName.FirstName, &mechName.LastName,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if err := setStatus(&d.Appointment, status); err != nil {
			return nil, err
		}
		if svName != nil {
			sv.Name = *svName
			d.Service = &sv
		}
		if mechID != nil {
			mech.ID = *mechID
			if mechProfileID != nil {
				mech.Profile = &mechName
			}
			d.Mechanic = &mech
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
