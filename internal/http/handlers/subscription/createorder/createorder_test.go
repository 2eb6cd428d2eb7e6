package createorder

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

	"github.com/techcfa/cfa-backend/internal/http/middlewarectx"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/services/subscription"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateOrder(ctx context.Context, user *models.User, planID string, members []models.Member) (*subscription.OrderResult, error) {
	args := m.Called(ctx, user, planID, members)
	res, _ := args.Get(0).(*subscription.OrderResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateOrderHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: "u1", Email: "asha@example.com"}
	plan := &models.Plan{PlanID: "basic", PlanName: "Basic Protection", DurationMonths: 12}

	tests := []struct {
		name           string
		withUser       bool
		requestBody    any
		mockResult     *subscription.OrderResult
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "order created",
			withUser:    true,
			requestBody: Request{PlanID: "basic"},
			mockResult: &subscription.OrderResult{
				OrderID:  "order_abc",
				Amount:   499,
				Currency: "INR",
				Plan:     plan,
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "free order within promotional threshold",
			withUser:    true,
			requestBody: Request{PlanID: "basic"},
			mockResult: &subscription.OrderResult{
				OrderID:    "order_free",
				Amount:     0,
				Currency:   "INR",
				IsFreeUser: true,
				Plan:       plan,
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing user in context",
			withUser:       false,
			requestBody:    Request{PlanID: "basic"},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "missing plan id",
			withUser:       true,
			requestBody:    Request{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field PlanID is a required field",
		},
		{
			name:           "already active",
			withUser:       true,
			requestBody:    Request{PlanID: "basic"},
			mockErr:        subscription.ErrAlreadyActive,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "subscription is already active",
		},
		{
			name:           "unknown plan",
			withUser:       true,
			requestBody:    Request{PlanID: "ghost"},
			mockErr:        storage.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "plan not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockResult != nil || tt.mockErr != nil {
				reqBody := tt.requestBody.(Request)
				serviceMock.On("CreateOrder", mock.Anything, user, reqBody.PlanID, reqBody.AdditionalMembers).
					Return(tt.mockResult, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/subscription/create-order", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserKey, user)
			}
			req = req.WithContext(ctx)
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
				assert.Equal(t, tt.mockResult.OrderID, data["orderId"])
				assert.Equal(t, float64(tt.mockResult.Amount), data["amount"])
				assert.Equal(t, "INR", data["currency"])
				assert.Equal(t, tt.mockResult.IsFreeUser, data["isFreeUser"])
				planData := data["plan"].(map[string]any)
				assert.Equal(t, plan.PlanID, planData["planId"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
