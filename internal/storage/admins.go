package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/techcfa/cfa-backend/internal/models"
)

const adminColumns = `id, username, COALESCE(email, ''), password_hash, role,
	is_active, last_login, created_at`

func scanAdmin(row rowScanner) (*models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role,
		&a.IsActive, &a.LastLogin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAdmin inserts a backoffice account (seed binary only).
func (s *Storage) CreateAdmin(ctx context.Context, a models.Admin) (string, error) {
	const op = "storage.CreateAdmin"

	var id string
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO admins (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		a.Username, a.Email, a.PasswordHash, a.Role,
	).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetAdminByUsername returns the admin with the given username or
// ErrNotFound.
func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const op = "storage.GetAdminByUsername"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetAdminByID returns the admin with the given id or ErrNotFound.
func (s *Storage) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	const op = "storage.GetAdminByID"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// UpdateAdminLastLogin stamps a successful admin login.
func (s *Storage) UpdateAdminLastLogin(ctx context.Context, id string) error {
	const op = "storage.UpdateAdminLastLogin"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE admins SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
