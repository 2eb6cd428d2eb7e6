// Package userdetail returns a single user together with their
// payment history.
package userdetail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/users"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)
}

type Handler struct {
	log   *slog.Logger
	store UserStore
}

func New(log *slog.Logger, store UserStore) *Handler {
	return &Handler{log: log, store: store}
}

// ServeHTTP godoc
// @Summary User detail
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Response "User with payment history"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userdetail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	user, err := h.store.GetUserByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("user not found", slog.String("user_id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get user"))
		return
	}

	payments, err := h.store.ListPaymentsByUser(r.Context(), id)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get user"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user":     users.UserRow(user),
		"members":  user.Members,
		"payments": payments,
	}))
}
