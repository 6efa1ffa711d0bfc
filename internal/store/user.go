package store

import (
	"context"

	"roadside-booking-api/internal/model"
)

// CreateUser inserts the user and its profile row together. The profile takes
// the user's id and email plus whatever names were given at sign-up.
func (s *Store) CreateUser(ctx context.Context, u *model.User, firstName, lastName string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1,$2)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return duplicate(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, first_name, last_name, email) VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4)`,
		u.ID, firstName, lastName, u.Email,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}
