// Package sendotp implements the email OTP issuance endpoint, used by
// both send-otp and resend-otp routes.
package sendotp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
)

// Request carries the target email and an optional display name used
// when the touchpoint creates the account.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName"`
}

// Service issues the code and delivers it by mail.
type Service interface {
	SendEmailOTP(ctx context.Context, email, fullName string) error
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
// @Summary Send a login OTP by email
// @Description Creates the account on first contact and emails a 6-digit code valid for 10 minutes.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Target email"
// @Success 200 {object} response.Response "Code sent"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Delivery failed"
// @Router /api/auth/email/send-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.sendotp"

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

	if err := h.service.SendEmailOTP(r.Context(), req.Email, req.FullName); err != nil {
		log.Error("failed to send otp", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send otp"))
		return
	}

	log.Info("otp sent", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "OTP sent successfully",
	}))
}
