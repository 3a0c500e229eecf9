package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

const userColumns = `id, first_name, last_name, email, password_hash, is_admin, mobile_no`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.IsAdmin, &u.MobileNo); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError("get user", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, is_admin, mobile_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.FirstName, user.LastName, user.Email, user.Password, user.IsAdmin, user.MobileNo)
	return mapError("create user", err)
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password_hash = $4,
			is_admin = $5, mobile_no = $6, updated_at = NOW()
		WHERE id = $7
	`, user.FirstName, user.LastName, user.Email, user.Password, user.IsAdmin, user.MobileNo, user.ID)
	if err != nil {
		return mapError("update user", err)
	}
	return expectOneRow("update user", res, storage.ErrNotFound)
}
