// Package createorder implements order creation for a plan purchase.
package createorder

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
	PlanID            string          `json:"planId" validate:"required"`
	AdditionalMembers []models.Member `json:"additionalMembers" validate:"omitempty,dive"`
}

type Service interface {
	CreateOrder(ctx context.Context, user *models.User, planID string, members []models.Member) (*subscription.OrderResult, error)
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
// @Summary Create a payment order for a plan
// @Description Computes the amount (zero within the promotional threshold), creates a gateway order and records a pending payment.
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Plan and optional members"
// @Success 200 {object} response.Response "Order id, amount, currency"
// @Failure 400 {object} response.ErrorResponse "Subscription already active"
// @Failure 404 {object} response.ErrorResponse "Unknown or inactive plan"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Gateway or server error"
// @Router /api/subscription/create-order [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.createorder"

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

	res, err := h.service.CreateOrder(r.Context(), user, req.PlanID, req.AdditionalMembers)
	switch {
	case errors.Is(err, subscription.ErrAlreadyActive):
		log.Error("subscription already active", slog.String("user_id", user.ID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("subscription is already active"))
		return
	case errors.Is(err, storage.ErrNotFound):
		log.Error("plan not found", slog.String("plan_id", req.PlanID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case err != nil:
		log.Error("failed to create order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create order"))
		return
	}

	log.Info("order created",
		slog.String("order_id", res.OrderID), slog.Int("amount", res.Amount))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"orderId":    res.OrderID,
		"amount":     res.Amount,
		"currency":   res.Currency,
		"isFreeUser": res.IsFreeUser,
		"plan": map[string]any{
			"planId":   res.Plan.PlanID,
			"planName": res.Plan.PlanName,
			"duration": res.Plan.DurationMonths,
		},
	}))
}
