package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/techcfa/cfa-backend/internal/models"
)

const userColumns = `id, full_name, COALESCE(email, ''), COALESCE(mobile_number, ''),
	COALESCE(password_hash, ''), customer_id, is_verified,
	COALESCE(otp_code, ''), otp_expires_at,
	COALESCE(subscription_plan_id, ''), COALESCE(subscription_plan_name, ''),
	subscription_status, subscription_start, subscription_end,
	COALESCE(subscription_payment_id, ''), COALESCE(subscription_amount, 0),
	additional_members, last_login, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var members []byte
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.MobileNumber,
		&u.PasswordHash, &u.CustomerID, &u.IsVerified,
		&u.OTPCode, &u.OTPExpiresAt,
		&u.Subscription.PlanID, &u.Subscription.PlanName,
		&u.Subscription.Status, &u.Subscription.StartDate, &u.Subscription.EndDate,
		&u.Subscription.PaymentID, &u.Subscription.Amount,
		&members, &u.LastLogin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(members, &u.Members); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and returns its id. The caller is
// responsible for having assigned the customer id and hashed the
// password beforehand.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (string, error) {
	const op = "storage.CreateUser"

	members, err := marshalJSON(u.Members)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO users (full_name, email, mobile_number, password_hash, customer_id,
			is_verified, otp_code, otp_expires_at, additional_members)
		VALUES ($1, NULLIF(lower($2), ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9)
		RETURNING id`,
		u.FullName, u.Email, u.MobileNumber, u.PasswordHash, u.CustomerID,
		u.IsVerified, u.OTPCode, u.OTPExpiresAt, members,
	).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUserByEmail returns the user with the given email (matched
// case-insensitively) or ErrNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByMobile returns the user with the given mobile number or
// ErrNotFound.
func (s *Storage) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	const op = "storage.GetUserByMobile"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE mobile_number = $1`, mobile)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID returns the user with the given id or ErrNotFound.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SaveOTP stores a fresh OTP challenge on the user record.
func (s *Storage) SaveOTP(ctx context.Context, userID, code string, expiresAt time.Time) error {
	const op = "storage.SaveOTP"

	_, err := s.DB.ExecContext(ctx, `
		UPDATE users SET otp_code = $2, otp_expires_at = $3, updated_at = now()
		WHERE id = $1`,
		userID, code, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSignupProfile refreshes the name and password hash of an
// unverified account that re-entered the signup flow.
func (s *Storage) UpdateSignupProfile(ctx context.Context, userID, fullName, passwordHash string) error {
	const op = "storage.UpdateSignupProfile"

	_, err := s.DB.ExecContext(ctx, `
		UPDATE users SET full_name = $2, password_hash = NULLIF($3, ''), updated_at = now()
		WHERE id = $1`,
		userID, fullName, passwordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkVerified flips the verification flag, records the login and
// clears the OTP challenge in one write.
func (s *Storage) MarkVerified(ctx context.Context, userID string) error {
	const op = "storage.MarkVerified"

	_, err := s.DB.ExecContext(ctx, `
		UPDATE users SET is_verified = TRUE, last_login = now(),
			otp_code = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePassword overwrites the password hash and clears the OTP
// challenge (password-reset confirmation).
func (s *Storage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const op = "storage.UpdatePassword"

	_, err := s.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2,
			otp_code = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateLastLogin stamps a successful password login.
func (s *Storage) UpdateLastLogin(ctx context.Context, userID string) error {
	const op = "storage.UpdateLastLogin"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountUsers returns the total number of user records, verified or not.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CancelSubscription flips an active subscription to inactive. Returns
// ErrNotFound when the user has no active subscription.
func (s *Storage) CancelSubscription(ctx context.Context, userID string) error {
	const op = "storage.CancelSubscription"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET subscription_status = $2, updated_at = now()
		WHERE id = $1 AND subscription_status = $3`,
		userID, models.SubscriptionInactive, models.SubscriptionActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListUsers returns a page of users matching the optional free-text
// search and subscription status filter, plus the total match count.
func (s *Storage) ListUsers(ctx context.Context, search, status string, limit, offset int) ([]*models.User, int, error) {
	const op = "storage.ListUsers"

	where := "TRUE"
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (full_name ILIKE $%d OR email ILIKE $%d
			OR mobile_number ILIKE $%d OR customer_id ILIKE $%d)`,
			len(args), len(args), len(args), len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND subscription_status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, limit, offset)
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// OverrideSubscription applies a field-wise admin override of a user's
// subscription state. Empty/nil fields are left untouched.
func (s *Storage) OverrideSubscription(ctx context.Context, userID, status, planID string, amount *int) (*models.User, error) {
	const op = "storage.OverrideSubscription"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET
			subscription_status = COALESCE(NULLIF($2, ''), subscription_status),
			subscription_plan_id = COALESCE(NULLIF($3, ''), subscription_plan_id),
			subscription_amount = COALESCE($4, subscription_amount),
			updated_at = now()
		WHERE id = $1`,
		userID, status, planID, amount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return s.GetUserByID(ctx, userID)
}

// ListActiveSubscriberEmails returns the addresses the notifier mails
// broadcast announcements to.
func (s *Storage) ListActiveSubscriberEmails(ctx context.Context) ([]string, error) {
	const op = "storage.ListActiveSubscriberEmails"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT email FROM users
		WHERE subscription_status = $1 AND is_active AND is_verified
			AND email IS NOT NULL`,
		models.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return emails, nil
}
