// Package login implements password login by email or mobile number.
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

// Request requires a password plus exactly one identifier.
type Request struct {
	Email        string `json:"email" validate:"required_without=MobileNumber,omitempty,email"`
	MobileNumber string `json:"mobileNumber" validate:"required_without=Email"`
	Password     string `json:"password" validate:"required"`
}

type Service interface {
	Login(ctx context.Context, email, mobileNumber, rawPassword string) (string, *models.User, error)
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
// @Summary Log in with a password
// @Description Authenticates by email or mobile number and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} response.Response "Token and profile"
// @Failure 400 {object} response.ErrorResponse "Invalid credentials"
// @Failure 403 {object} response.ErrorResponse "Deactivated or unverified account"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	token, user, err := h.service.Login(r.Context(), req.Email, req.MobileNumber, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Error("invalid credentials")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	case errors.Is(err, auth.ErrAccountInactive):
		log.Error("deactivated account")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("account is deactivated"))
		return
	case errors.Is(err, auth.ErrNotVerified):
		log.Error("unverified account")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("account is not verified"))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("login failed"))
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user.Public(),
	}))
}
