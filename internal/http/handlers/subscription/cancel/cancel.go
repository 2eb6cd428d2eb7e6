// Package cancel flips the caller's active subscription to inactive.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/middlewarectx"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/services/subscription"
)

type Service interface {
	Cancel(ctx context.Context, userID string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Cancel the current subscription
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Cancelled"
// @Failure 400 {object} response.ErrorResponse "No active subscription"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/subscription/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

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

	err := h.service.Cancel(r.Context(), user.ID)
	if errors.Is(err, subscription.ErrNotActive) {
		log.Error("no active subscription", slog.String("user_id", user.ID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("no active subscription to cancel"))
		return
	}
	if err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to cancel subscription"))
		return
	}

	log.Info("subscription cancelled", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Subscription cancelled successfully",
	}))
}
