// Package usersubscription lets an admin override a user's
// subscription state without going through the payment gateway.
package usersubscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/users"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type Request struct {
	Status string `json:"status" validate:"required,oneof=active inactive pending"`
	PlanID string `json:"planId,omitempty"`
	Amount *int   `json:"amount,omitempty" validate:"omitempty,min=0"`
}

type Store interface {
	OverrideSubscription(ctx context.Context, userID, status, planID string, amount *int) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	store    Store
	validate *validator.Validate
}

func New(log *slog.Logger, store Store) *Handler {
	return &Handler{
		log:      log,
		store:    store,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Override user subscription
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body Request true "Subscription override"
// @Success 200 {object} response.Response "Updated user"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/users/{id}/subscription [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.usersubscription"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

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

	user, err := h.store.OverrideSubscription(r.Context(), id, req.Status, req.PlanID, req.Amount)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("user not found", slog.String("user_id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to override subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update subscription"))
		return
	}

	log.Info("subscription overridden",
		slog.String("user_id", id),
		slog.String("status", req.Status),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Subscription updated",
		"user":    users.UserRow(user),
	}))
}
