// Package verifypayment implements the gateway callback verification
// that activates a subscription.
package verifypayment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/middlewarectx"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/services/subscription"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type Request struct {
	OrderID           string          `json:"orderId" validate:"required"`
	PaymentID         string          `json:"paymentId" validate:"required"`
	Signature         string          `json:"signature" validate:"required"`
	AdditionalMembers []models.Member `json:"additionalMembers" validate:"omitempty,dive"`
}

type Service interface {
	VerifyPayment(ctx context.Context, user *models.User, orderID, paymentID, signature string, members []models.Member) (*models.UserSubscription, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Verify a gateway payment and activate the subscription
// @Description Checks the HMAC signature, completes the pending payment exactly once and activates the plan.
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Order, payment and signature"
// @Success 200 {object} response.Response "Activated subscription"
// @Failure 400 {object} response.ErrorResponse "Invalid signature"
// @Failure 404 {object} response.ErrorResponse "No pending payment for order"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/subscription/verify-payment [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.verifypayment"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, err := h.service.VerifyPayment(r.Context(), user,
		req.OrderID, req.PaymentID, req.Signature, req.AdditionalMembers)
	switch {
	case errors.Is(err, subscription.ErrInvalidSignature):
		log.Error("invalid payment signature", slog.String("order_id", req.OrderID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payment signature"))
		return
	case errors.Is(err, storage.ErrNotFound):
		log.Error("no pending payment for order", slog.String("order_id", req.OrderID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no pending payment found for order"))
		return
	case err != nil:
		log.Error("failed to verify payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify payment"))
		return
	}

	log.Info("payment verified, subscription active",
		slog.String("user_id", user.ID), slog.String("order_id", req.OrderID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":      "Payment verified successfully",
		"subscription": sub,
	}))
}
