package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

func (m *ServiceMock) AdminLogin(ctx context.Context, username, rawPassword string) (string, *models.Admin, error) {
	args := m.Called(ctx, username, rawPassword)
	admin, _ := args.Get(1).(*models.Admin)
	return args.String(0), admin, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAdminLoginHandler_ServeHTTP(t *testing.T) {
	admin := &models.Admin{ID: "a1", Username: "admin", Role: models.RoleSuperAdmin}

	tests := []struct {
		name        string
		requestBody any
		mockToken   string
		mockAdmin   *models.Admin
		mockErr     error
		wantCode    int
		wantErr     string
	}{
		{
			name:        "valid login",
			requestBody: Request{Username: "admin", Password: "secret123"},
			mockToken:   "tok",
			mockAdmin:   admin,
			wantCode:    http.StatusOK,
		},
		{
			name:        "wrong password",
			requestBody: Request{Username: "admin", Password: "wrong"},
			mockErr:     auth.ErrInvalidCredentials,
			wantCode:    http.StatusUnauthorized,
			wantErr:     "invalid credentials",
		},
		{
			name:        "missing username",
			requestBody: Request{Password: "secret123"},
			wantCode:    http.StatusUnprocessableEntity,
			wantErr:     "field Username is a required field",
		},
		{
			name:        "service failure",
			requestBody: Request{Username: "admin", Password: "secret123"},
			mockErr:     errors.New("db down"),
			wantCode:    http.StatusInternalServerError,
			wantErr:     "login failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockToken != "" || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("AdminLogin", mock.Anything, req.Username, req.Password).
					Return(tt.mockToken, tt.mockAdmin, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantErr != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantErr, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data := got["data"].(map[string]any)
				assert.Equal(t, "tok", data["token"])
				adminData := data["admin"].(map[string]any)
				assert.Equal(t, admin.Username, adminData["username"])
				assert.Equal(t, admin.Role, adminData["role"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
