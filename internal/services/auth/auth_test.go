package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/techcfa/cfa-backend/internal/lib/jwt"
	"github.com/techcfa/cfa-backend/internal/lib/password"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/services/auth"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, u models.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) SaveOTP(ctx context.Context, userID, code string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, code, expiresAt)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateSignupProfile(ctx context.Context, userID, fullName, passwordHash string) error {
	args := m.Called(ctx, userID, fullName, passwordHash)
	return args.Error(0)
}

func (m *UserRepoMock) MarkVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AdminRepoMock struct {
	mock.Mock
}

func (m *AdminRepoMock) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *AdminRepoMock) UpdateAdminLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MailMock struct {
	mock.Mock
}

func (m *MailMock) SendOTPEmail(to, fullName, code, purpose string) error {
	args := m.Called(to, fullName, code, purpose)
	return args.Error(0)
}

type SMSMock struct {
	mock.Mock
}

func (m *SMSMock) SendSMS(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(users *UserRepoMock, admins *AdminRepoMock, mail *MailMock, sms *SMSMock) *auth.Service {
	maker := customjwt.NewJWTMaker("test-secret", time.Hour)
	return auth.New(users, admins, maker, mail, sms, newNoopLogger())
}

func futureTime() *time.Time {
	t := time.Now().UTC().Add(5 * time.Minute)
	return &t
}

func pastTime() *time.Time {
	t := time.Now().UTC().Add(-time.Minute)
	return &t
}

func TestSendEmailOTP_NewUser(t *testing.T) {
	users := new(UserRepoMock)
	mail := new(MailMock)

	users.On("GetUserByEmail", mock.Anything, "new@example.com").
		Return(nil, storage.ErrNotFound).Once()
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" && u.FullName == "New User" &&
			u.CustomerID != "" && u.IsActive
	})).Return("user-1", nil).Once()
	users.On("SaveOTP", mock.Anything, "user-1",
		mock.MatchedBy(func(code string) bool { return len(code) == 6 }),
		mock.AnythingOfType("time.Time")).Return(nil).Once()
	mail.On("SendOTPEmail", "new@example.com", "New User",
		mock.AnythingOfType("string"), auth.PurposeLogin).Return(nil).Once()

	svc := newService(users, new(AdminRepoMock), mail, new(SMSMock))
	err := svc.SendEmailOTP(context.Background(), "new@example.com", "New User")

	require.NoError(t, err)
	users.AssertExpectations(t)
	mail.AssertExpectations(t)
}

func TestSendEmailOTP_SendFailureKeepsCode(t *testing.T) {
	users := new(UserRepoMock)
	mail := new(MailMock)

	user := &models.User{ID: "user-1", Email: "a@b.com", FullName: "A"}
	users.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()
	users.On("SaveOTP", mock.Anything, "user-1", mock.Anything, mock.Anything).
		Return(nil).Once()
	mail.On("SendOTPEmail", "a@b.com", "A", mock.Anything, auth.PurposeLogin).
		Return(errors.New("smtp down")).Once()

	svc := newService(users, new(AdminRepoMock), mail, new(SMSMock))
	err := svc.SendEmailOTP(context.Background(), "a@b.com", "A")

	// The send failure is surfaced but the persisted code stays.
	require.Error(t, err)
	users.AssertExpectations(t)
}

func TestSendSignupOTP_AlreadyVerified(t *testing.T) {
	users := new(UserRepoMock)

	users.On("GetUserByEmail", mock.Anything, "done@example.com").
		Return(&models.User{ID: "user-1", Email: "done@example.com", IsVerified: true}, nil).Once()

	svc := newService(users, new(AdminRepoMock), new(MailMock), new(SMSMock))
	err := svc.SendSignupOTP(context.Background(), "Done", "done@example.com", "secret123")

	assert.ErrorIs(t, err, auth.ErrAlreadyRegistered)
	users.AssertExpectations(t)
}

func TestVerifyEmailOTP(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		userErr error
		code    string
		wantErr error
	}{
		{
			name: "success",
			user: &models.User{
				ID: "user-1", Email: "a@b.com",
				OTPCode: "123456", OTPExpiresAt: futureTime(),
			},
			code: "123456",
		},
		{
			name: "wrong code",
			user: &models.User{
				ID: "user-1", Email: "a@b.com",
				OTPCode: "123456", OTPExpiresAt: futureTime(),
			},
			code:    "654321",
			wantErr: auth.ErrInvalidOTP,
		},
		{
			name: "expired code",
			user: &models.User{
				ID: "user-1", Email: "a@b.com",
				OTPCode: "123456", OTPExpiresAt: pastTime(),
			},
			code:    "123456",
			wantErr: auth.ErrInvalidOTP,
		},
		{
			name: "cleared code",
			user: &models.User{
				ID: "user-1", Email: "a@b.com",
			},
			code:    "123456",
			wantErr: auth.ErrInvalidOTP,
		},
		{
			name:    "unknown user",
			userErr: storage.ErrNotFound,
			code:    "123456",
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			users.On("GetUserByEmail", mock.Anything, "a@b.com").
				Return(tt.user, tt.userErr).Once()
			if tt.wantErr == nil {
				users.On("MarkVerified", mock.Anything, "user-1").Return(nil).Once()
			}

			svc := newService(users, new(AdminRepoMock), new(MailMock), new(SMSMock))
			token, user, err := svc.VerifyEmailOTP(context.Background(), "a@b.com", tt.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.True(t, user.IsVerified)
			assert.Empty(t, user.OTPCode)
			users.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     *models.User
		userErr  error
		password string
		wantErr  error
	}{
		{
			name: "success",
			user: &models.User{
				ID: "user-1", Email: "a@b.com", PasswordHash: hash,
				IsActive: true, IsVerified: true,
			},
			password: "correct-horse",
		},
		{
			name: "wrong password",
			user: &models.User{
				ID: "user-1", Email: "a@b.com", PasswordHash: hash,
				IsActive: true, IsVerified: true,
			},
			password: "battery-staple",
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name: "otp-only account has no password",
			user: &models.User{
				ID: "user-1", Email: "a@b.com",
				IsActive: true, IsVerified: true,
			},
			password: "anything",
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			userErr:  storage.ErrNotFound,
			password: "correct-horse",
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name: "deactivated account",
			user: &models.User{
				ID: "user-1", Email: "a@b.com", PasswordHash: hash,
				IsActive: false, IsVerified: true,
			},
			password: "correct-horse",
			wantErr:  auth.ErrAccountInactive,
		},
		{
			name: "unverified account",
			user: &models.User{
				ID: "user-1", Email: "a@b.com", PasswordHash: hash,
				IsActive: true, IsVerified: false,
			},
			password: "correct-horse",
			wantErr:  auth.ErrNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			users.On("GetUserByEmail", mock.Anything, "a@b.com").
				Return(tt.user, tt.userErr).Once()
			if tt.wantErr == nil {
				users.On("UpdateLastLogin", mock.Anything, "user-1").Return(nil).Once()
			}

			svc := newService(users, new(AdminRepoMock), new(MailMock), new(SMSMock))
			token, _, err := svc.Login(context.Background(), "a@b.com", "", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			users.AssertExpectations(t)
		})
	}
}

func TestResetPassword(t *testing.T) {
	users := new(UserRepoMock)

	user := &models.User{
		ID: "user-1", Email: "a@b.com",
		OTPCode: "123456", OTPExpiresAt: futureTime(),
	}
	users.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()
	users.On("UpdatePassword", mock.Anything, "user-1",
		mock.MatchedBy(func(hash string) bool {
			return password.CompareHash(hash, "new-password") == nil
		})).Return(nil).Once()

	svc := newService(users, new(AdminRepoMock), new(MailMock), new(SMSMock))
	err := svc.ResetPassword(context.Background(), "a@b.com", "123456", "new-password")

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAdminLogin(t *testing.T) {
	hash, err := password.GetHash("admin-pass")
	require.NoError(t, err)

	tests := []struct {
		name     string
		admin    *models.Admin
		adminErr error
		password string
		wantErr  error
	}{
		{
			name: "success",
			admin: &models.Admin{
				ID: "admin-1", Username: "root", PasswordHash: hash,
				Role: models.RoleSuperAdmin, IsActive: true,
			},
			password: "admin-pass",
		},
		{
			name: "wrong password",
			admin: &models.Admin{
				ID: "admin-1", Username: "root", PasswordHash: hash,
				Role: models.RoleAdmin, IsActive: true,
			},
			password: "nope",
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name: "inactive admin",
			admin: &models.Admin{
				ID: "admin-1", Username: "root", PasswordHash: hash,
				Role: models.RoleAdmin, IsActive: false,
			},
			password: "admin-pass",
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name:     "unknown admin",
			adminErr: storage.ErrNotFound,
			password: "admin-pass",
			wantErr:  auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admins := new(AdminRepoMock)
			admins.On("GetAdminByUsername", mock.Anything, "root").
				Return(tt.admin, tt.adminErr).Once()
			if tt.wantErr == nil {
				admins.On("UpdateAdminLastLogin", mock.Anything, "admin-1").Return(nil).Once()
			}

			svc := newService(new(UserRepoMock), admins, new(MailMock), new(SMSMock))
			token, admin, err := svc.AdminLogin(context.Background(), "root", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, models.RoleSuperAdmin, admin.Role)
			admins.AssertExpectations(t)
		})
	}
}
