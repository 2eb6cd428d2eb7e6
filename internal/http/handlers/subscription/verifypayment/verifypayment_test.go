package verifypayment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func (m *ServiceMock) VerifyPayment(ctx context.Context, user *models.User, orderID, paymentID, signature string, members []models.Member) (*models.UserSubscription, error) {
	args := m.Called(ctx, user, orderID, paymentID, signature, members)
	sub, _ := args.Get(0).(*models.UserSubscription)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVerifyPaymentHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: "u1"}
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 12, 0)
	active := &models.UserSubscription{
		PlanID:    "basic",
		PlanName:  "Basic Protection",
		Status:    models.SubscriptionActive,
		StartDate: &start,
		EndDate:   &end,
		PaymentID: "pay_1",
		Amount:    499,
	}

	validReq := Request{OrderID: "order_abc", PaymentID: "pay_1", Signature: "sig"}

	tests := []struct {
		name           string
		requestBody    any
		mockSub        *models.UserSubscription
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "payment verified",
			requestBody:    validReq,
			mockSub:        active,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid signature",
			requestBody:    validReq,
			mockErr:        subscription.ErrInvalidSignature,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid payment signature",
		},
		{
			name:           "replayed callback",
			requestBody:    validReq,
			mockErr:        storage.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "no pending payment found for order",
		},
		{
			name:           "missing signature",
			requestBody:    Request{OrderID: "order_abc", PaymentID: "pay_1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Signature is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockSub != nil || tt.mockErr != nil {
				reqBody := tt.requestBody.(Request)
				serviceMock.On("VerifyPayment", mock.Anything, user,
					reqBody.OrderID, reqBody.PaymentID, reqBody.Signature, reqBody.AdditionalMembers).
					Return(tt.mockSub, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/subscription/verify-payment", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserKey, user)
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
				assert.Equal(t, "Payment verified successfully", data["message"])
				sub := data["subscription"].(map[string]any)
				assert.Equal(t, "active", sub["status"])
				assert.Equal(t, "basic", sub["planId"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
