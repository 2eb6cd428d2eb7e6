// Package mysubscription returns the caller's subscription state.
package mysubscription

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/middlewarectx"
	"github.com/techcfa/cfa-backend/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Get the current user's subscription
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Subscription state and members"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Router /api/subscription/my-subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.mysubscription"

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

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription":      user.Subscription,
		"additionalMembers": user.Members,
		"customerId":        user.CustomerID,
	}))
}
