package store

import (
	"context"
	"fmt"
	"strings"

	"roadside-booking-api/internal/model"
)

// ProfilePatch carries the fields to change; nil fields are left alone.
type ProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

const profileCols = `id, first_name, last_name, email, phone, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	return scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id = $1`, userID))
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.UserProfile, error) {
	if patch.Empty() {
		return s.GetProfile(ctx, userID)
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("first_name", patch.FirstName)
	add("last_name", patch.LastName)
	add("phone", patch.Phone)

	args = append(args, userID)
	q := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING `+profileCols,
		strings.Join(sets, ", "), len(args))

	return scanProfile(s.pool.QueryRow(ctx, q, args...))
}
