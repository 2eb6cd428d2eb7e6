// Package auth implements the account lifecycle: OTP issuance and
// verification over email and SMS, password login, password reset and
// the admin login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/techcfa/cfa-backend/internal/lib/jwt"
	"github.com/techcfa/cfa-backend/internal/lib/otp"
	"github.com/techcfa/cfa-backend/internal/lib/password"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrNotVerified        = errors.New("account is not verified")
	ErrAlreadyRegistered  = errors.New("user already registered")
)

// OTP purposes select the wording of the outgoing message.
const (
	PurposeLogin = "login"
	PurposeReset = "reset"
)

// UserRepository is the part of the storage the service needs for users.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*models.User, error)
	SaveOTP(ctx context.Context, userID, code string, expiresAt time.Time) error
	UpdateSignupProfile(ctx context.Context, userID, fullName, passwordHash string) error
	MarkVerified(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
}

// AdminRepository is the part of the storage the service needs for admins.
type AdminRepository interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateAdminLastLogin(ctx context.Context, id string) error
}

// MailSender delivers OTP mails.
type MailSender interface {
	SendOTPEmail(to, fullName, code, purpose string) error
}

// SMSSender delivers OTP text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Service wires the repositories, the token maker and the delivery
// channels together.
type Service struct {
	users    UserRepository
	admins   AdminRepository
	jwtMaker jwt.Maker
	mail     MailSender
	sms      SMSSender
	log      *slog.Logger
}

// New creates the auth service.
func New(users UserRepository, admins AdminRepository, jwtMaker jwt.Maker,
	mail MailSender, sms SMSSender, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		admins:   admins,
		jwtMaker: jwtMaker,
		mail:     mail,
		sms:      sms,
		log:      log,
	}
}

// issueOTP generates a code, persists it on the record and only then
// runs send. A send failure is surfaced but the persisted code stays
// valid until expiry.
func (s *Service) issueOTP(ctx context.Context, userID string, send func(code string) error) error {
	const op = "auth.issueOTP"

	code, err := otp.NewCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SaveOTP(ctx, userID, code, time.Now().UTC().Add(otp.TTL)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := send(code); err != nil {
		s.log.Error("failed to send otp", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendEmailOTP upserts a user by email and sends a login OTP.
func (s *Service) SendEmailOTP(ctx context.Context, email, fullName string) error {
	const op = "auth.SendEmailOTP"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = s.createUser(ctx, fullName, email, "", "")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.issueOTP(ctx, user.ID, func(code string) error {
		return s.mail.SendOTPEmail(user.Email, user.FullName, code, PurposeLogin)
	})
}

// SendSignupOTP registers (or refreshes) a password-based signup and
// sends a verification OTP. A user that already completed verification
// cannot sign up again.
func (s *Service) SendSignupOTP(ctx context.Context, fullName, email, rawPassword string) error {
	const op = "auth.SendSignupOTP"

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user, err = s.createUser(ctx, fullName, email, "", hash)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case user.IsVerified:
		return fmt.Errorf("%s: %w", op, ErrAlreadyRegistered)
	default:
		// Unverified leftover from an earlier attempt: refresh the
		// profile with the newly submitted name and password.
		if err := s.users.UpdateSignupProfile(ctx, user.ID, fullName, hash); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		user.FullName = fullName
	}

	return s.issueOTP(ctx, user.ID, func(code string) error {
		return s.mail.SendOTPEmail(user.Email, user.FullName, code, PurposeLogin)
	})
}

// SendMobileOTP upserts a user by mobile number and sends the code by SMS.
func (s *Service) SendMobileOTP(ctx context.Context, mobileNumber, fullName string) error {
	const op = "auth.SendMobileOTP"

	user, err := s.users.GetUserByMobile(ctx, mobileNumber)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = s.createUser(ctx, fullName, "", mobileNumber, "")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.issueOTP(ctx, user.ID, func(code string) error {
		body := fmt.Sprintf("Your verification code is %s. It is valid for 10 minutes.", code)
		return s.sms.SendSMS(ctx, mobileNumber, body)
	})
}

// SendResetOTP sends a password-reset OTP to an existing user.
func (s *Service) SendResetOTP(ctx context.Context, email string) error {
	const op = "auth.SendResetOTP"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.issueOTP(ctx, user.ID, func(code string) error {
		return s.mail.SendOTPEmail(user.Email, user.FullName, code, PurposeReset)
	})
}

// VerifyEmailOTP checks the submitted code against the stored challenge
// and, on success, marks the user verified, clears the code and issues
// a token.
func (s *Service) VerifyEmailOTP(ctx context.Context, email, code string) (string, *models.User, error) {
	const op = "auth.VerifyEmailOTP"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.completeOTP(ctx, user, code, op)
}

// VerifyMobileOTP is VerifyEmailOTP for the SMS channel.
func (s *Service) VerifyMobileOTP(ctx context.Context, mobileNumber, code string) (string, *models.User, error) {
	const op = "auth.VerifyMobileOTP"

	user, err := s.users.GetUserByMobile(ctx, mobileNumber)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.completeOTP(ctx, user, code, op)
}

func (s *Service) completeOTP(ctx context.Context, user *models.User, code, op string) (string, *models.User, error) {
	if err := checkOTP(user, code); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.IsVerified = true
	user.OTPCode = ""
	user.OTPExpiresAt = nil

	token, err := s.jwtMaker.GenerateToken(user.ID, "user")
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ResetPassword validates a reset OTP and overwrites the password hash.
// No token is issued; the user logs in with the new password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "auth.ResetPassword"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkOTP(user, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	hash, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Login checks a password against a verified, active account found by
// email or mobile number and issues a token.
func (s *Service) Login(ctx context.Context, email, mobileNumber, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	var user *models.User
	var err error
	if email != "" {
		user, err = s.users.GetUserByEmail(ctx, email)
	} else {
		user, err = s.users.GetUserByMobile(ctx, mobileNumber)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	// OTP-only accounts have no hash; CompareHash rejects them.
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%s: %w", op, ErrAccountInactive)
	}
	if !user.IsVerified {
		return "", nil, fmt.Errorf("%s: %w", op, ErrNotVerified)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, "user")
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// AdminLogin checks the backoffice credentials and issues a token
// carrying the admin's role.
func (s *Service) AdminLogin(ctx context.Context, username, rawPassword string) (string, *models.Admin, error) {
	const op = "auth.AdminLogin"

	admin, err := s.admins.GetAdminByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(admin.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !admin.IsActive {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := s.admins.UpdateAdminLastLogin(ctx, admin.ID); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.jwtMaker.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, admin, nil
}

// createUser builds a fresh user record with its derived customer id.
// Hashing and id derivation happen here, before the write.
func (s *Service) createUser(ctx context.Context, fullName, email, mobile, passwordHash string) (*models.User, error) {
	customerID, err := otp.NewCustomerID(email, mobile)
	if err != nil {
		return nil, err
	}
	user := models.User{
		FullName:     fullName,
		Email:        email,
		MobileNumber: mobile,
		PasswordHash: passwordHash,
		CustomerID:   customerID,
		IsActive:     true,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

func checkOTP(user *models.User, code string) error {
	if user.OTPCode == "" || user.OTPCode != code {
		return ErrInvalidOTP
	}
	if user.OTPExpiresAt == nil || time.Now().UTC().After(*user.OTPExpiresAt) {
		return ErrInvalidOTP
	}
	return nil
}
