// Package verifyotp implements OTP verification for the email flows.
// The same handler serves the plain email flow and the signup flow;
// only the success message differs.
package verifyotp

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
	"github.com/techcfa/cfa-backend/internal/storage"
)

// Request carries the email and the submitted code.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// Service checks the code and issues a token.
type Service interface {
	VerifyEmailOTP(ctx context.Context, email, code string) (string, *models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	message  string
	validate *validator.Validate
}

// New creates the handler. The message is returned on success, so the
// signup route can word it differently.
func New(log *slog.Logger, service Service, message string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		message:  message,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Verify an email OTP
// @Description Validates the submitted code, marks the account verified and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Email and code"
// @Success 200 {object} response.Response "Token and profile"
// @Failure 400 {object} response.ErrorResponse "Invalid or expired OTP"
// @Failure 404 {object} response.ErrorResponse "Unknown user"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/auth/email/verify-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyotp"

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

	token, user, err := h.service.VerifyEmailOTP(r.Context(), req.Email, req.OTP)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Error("user not found", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, auth.ErrInvalidOTP):
		log.Error("invalid or expired otp", slog.String("email", req.Email))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or expired OTP"))
		return
	case err != nil:
		log.Error("failed to verify otp", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify otp"))
		return
	}

	log.Info("otp verified", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": h.message,
		"token":   token,
		"user":    user.Public(),
	}))
}
