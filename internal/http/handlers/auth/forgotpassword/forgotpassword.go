// Package forgotpassword implements the password-reset flow: a reset
// OTP is mailed to a known account, then validated together with the
// replacement password.
package forgotpassword

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
	"github.com/techcfa/cfa-backend/internal/services/auth"
	"github.com/techcfa/cfa-backend/internal/storage"
)

// SendRequest is the body of the send-otp route.
type SendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetRequest is the body of the verify-otp route.
type ResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type Service interface {
	SendResetOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
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

// Send godoc
// @Summary Send a password-reset OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SendRequest true "Account email"
// @Success 200 {object} response.Response "Code sent"
// @Failure 404 {object} response.ErrorResponse "Unknown user"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Delivery failed"
// @Router /api/auth/forgot-password/send-otp [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req SendRequest
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

	err := h.service.SendResetOTP(r.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("user not found", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to send reset otp", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send otp"))
		return
	}

	log.Info("reset otp sent", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "OTP sent successfully",
	}))
}

// Reset godoc
// @Summary Reset the password with an OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResetRequest true "Email, code and new password"
// @Success 200 {object} response.Response "Password replaced"
// @Failure 400 {object} response.ErrorResponse "Invalid or expired OTP"
// @Failure 404 {object} response.ErrorResponse "Unknown user"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/auth/forgot-password/verify-otp [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword.reset"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req ResetRequest
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

	err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword)
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
		log.Error("failed to reset password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reset password"))
		return
	}

	log.Info("password reset", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Password reset successfully",
	}))
}
