package verifyotp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/services/auth"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) VerifyEmailOTP(ctx context.Context, email, code string) (string, *models.User, error) {
	args := m.Called(ctx, email, code)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVerifyOTPHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: "u1", Email: "asha@example.com", IsVerified: true}

	tests := []struct {
		name           string
		requestBody    any
		mockToken      string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid code",
			requestBody:    Request{Email: "asha@example.com", OTP: "123456"},
			mockToken:      "tok",
			mockUser:       user,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown user",
			requestBody:    Request{Email: "ghost@example.com", OTP: "123456"},
			mockErr:        storage.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
		{
			name:           "wrong code",
			requestBody:    Request{Email: "asha@example.com", OTP: "654321"},
			mockErr:        auth.ErrInvalidOTP,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid or expired OTP",
		},
		{
			name:           "code too short",
			requestBody:    Request{Email: "asha@example.com", OTP: "123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field OTP has a wrong length",
		},
		{
			name:           "code not numeric",
			requestBody:    Request{Email: "asha@example.com", OTP: "12345a"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field OTP can contain only numbers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockToken != "" || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("VerifyEmailOTP", mock.Anything, req.Email, req.OTP).
					Return(tt.mockToken, tt.mockUser, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock, "Email verified successfully")

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/email/verify-otp", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data := got["data"].(map[string]any)
				assert.Equal(t, "Email verified successfully", data["message"])
				assert.Equal(t, "tok", data["token"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
