package profile

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
// @Summary Current admin profile
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Admin profile"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Router /api/admin/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	admin, ok := middlewarectx.AdminFromContext(r.Context())
	if !ok {
		log.Error("admin missing from context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":        admin.ID,
		"username":  admin.Username,
		"email":     admin.Email,
		"role":      admin.Role,
		"lastLogin": admin.LastLogin,
		"createdAt": admin.CreatedAt,
	}))
}
