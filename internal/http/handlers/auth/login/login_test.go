package login

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
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, mobileNumber, rawPassword string) (string, *models.User, error) {
	args := m.Called(ctx, email, mobileNumber, rawPassword)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{
		ID:         "u1",
		FullName:   "Asha Rao",
		Email:      "asha@example.com",
		CustomerID: "CFA100001",
		IsVerified: true,
	}

	tests := []struct {
		name           string
		requestBody    any
		mockToken      string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login by email",
			requestBody:    Request{Email: "asha@example.com", Password: "secret123"},
			mockToken:      "tok",
			mockUser:       user,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "missing password",
			requestBody:    Request{Email: "asha@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "missing both identifiers",
			requestBody:    Request{Password: "secret123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email is a required field, field MobileNumber is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "wrong credentials",
			requestBody:    Request{Email: "asha@example.com", Password: "wrong"},
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
		{
			name:           "deactivated account",
			requestBody:    Request{Email: "asha@example.com", Password: "secret123"},
			mockErr:        auth.ErrAccountInactive,
			wantStatusCode: http.StatusForbidden,
			wantError:      "account is deactivated",
			wantStatus:     "Error",
		},
		{
			name:           "unverified account",
			requestBody:    Request{Email: "asha@example.com", Password: "secret123"},
			mockErr:        auth.ErrNotVerified,
			wantStatusCode: http.StatusForbidden,
			wantError:      "account is not verified",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockToken != "" || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, req.Email, req.MobileNumber, req.Password).
					Return(tt.mockToken, tt.mockUser, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "tok", data["token"])
				userData, ok := data["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, user.ID, userData["id"])
				assert.Equal(t, user.CustomerID, userData["customerId"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
