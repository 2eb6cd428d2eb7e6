// Package users lists registered users for the backoffice with
// search and subscription-status filters.
package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/handlers/media/list"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
)

type UserLister interface {
	ListUsers(ctx context.Context, search, status string, limit, offset int) ([]*models.User, int, error)
}

type Handler struct {
	log   *slog.Logger
	users UserLister
}

func New(log *slog.Logger, users UserLister) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary List users
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Match against name, email or mobile number"
// @Param status query string false "Subscription status filter" Enums(active, inactive, pending)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response "Paginated users"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")
	page, limit := list.Pagination(r)

	items, total, err := h.users.ListUsers(r.Context(), search, status, limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, u := range items {
		out = append(out, UserRow(u))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users":       out,
		"total":       total,
		"totalPages":  (total + limit - 1) / limit,
		"currentPage": page,
	}))
}

// UserRow is the backoffice representation of a user. Unlike
// models.PublicUser it includes account and subscription state.
func UserRow(u *models.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"fullName":     u.FullName,
		"email":        u.Email,
		"mobileNumber": u.MobileNumber,
		"customerId":   u.CustomerID,
		"isVerified":   u.IsVerified,
		"isActive":     u.IsActive,
		"subscription": u.Subscription,
		"lastLogin":    u.LastLogin,
		"createdAt":    u.CreatedAt,
	}
}
