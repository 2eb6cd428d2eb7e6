// Package login implements the backoffice login.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/services/auth"
)

type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Service interface {
	AdminLogin(ctx context.Context, username, rawPassword string) (string, *models.Admin, error)
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
// @Summary Backoffice login
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} response.Response "Token and admin profile"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	token, admin, err := h.service.AdminLogin(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Error("invalid admin credentials", slog.String("username", req.Username))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}
	if err != nil {
		log.Error("admin login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("login failed"))
		return
	}

	log.Info("admin logged in", slog.String("admin_id", admin.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Login successful",
		"token":   token,
		"admin": map[string]any{
			"id":       admin.ID,
			"username": admin.Username,
			"role":     admin.Role,
		},
	}))
}
