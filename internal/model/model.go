package model

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Service struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	Category          *string   `json:"category"`
	BasePrice         *float64  `json:"base_price"`
	EstimatedDuration *int      `json:"estimated_duration"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type UserProfile struct {
	ID        string    `json:"id"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name, trimming whatever is missing.
func (p *UserProfile) FullName() string {
	first, last := deref(p.FirstName), deref(p.LastName)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

type Appointment struct {
	ID                  string             `json:"id"`
	UserID              string             `json:"user_id"`
	ServiceID           string             `json:"service_id"`
	MechanicID          *string            `json:"mechanic_id"`
	ScheduledDate       string             `json:"scheduled_date"`
	ScheduledTime       string             `json:"scheduled_time"`
	IssueDescription    *string            `json:"issue_description"`
	UserLocationAddress string             `json:"user_location_address"`
	UserLat             *float64           `json:"user_lat"`
	UserLng             *float64           `json:"user_lng"`
	Status              *AppointmentStatus `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// CurrentStatus treats a null status as pending.
func (a *Appointment) CurrentStatus() AppointmentStatus {
	if a.Status == nil || *a.Status == "" {
		return StatusPending
	}
	return *a.Status
}

type Mechanic struct {
	ID              string    `json:"id"`
	ProfileID       string    `json:"profile_id"`
	Specialization  *string   `json:"specialization"`
	ExperienceYears *int      `json:"experience_years"`
	HourlyRate      *float64  `json:"hourly_rate"`
	IsAvailable     *bool     `json:"is_available"`
	LocationAddress *string   `json:"location_address"`
	Lat             *float64  `json:"lat"`
	Lng             *float64  `json:"lng"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Review struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	MechanicID    string    `json:"mechanic_id"`
	UserID        string    `json:"user_id"`
	Rating        int       `json:"rating"`
	Comment       *string   `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// joined rows

type ProfileSummary struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

type MechanicListing struct {
	Mechanic
	Profile *ProfileSummary `json:"profile"`
}

type ServiceSummary struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	BasePrice   *float64 `json:"base_price"`
}

type ProfileName struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type MechanicSummary struct {
	ID             string       `json:"id"`
	Specialization *string      `json:"specialization"`
	HourlyRate     *float64     `json:"hourly_rate"`
	Profile        *ProfileName `json:"profile"`
}

type AppointmentDetail struct {
	Appointment
	Service  *ServiceSummary  `json:"service"`
	Mechanic *MechanicSummary `json:"mechanic"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
