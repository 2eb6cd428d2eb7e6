// Package mobileotp implements the SMS channel: OTP issuance and
// verification keyed by mobile number.
package mobileotp

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

// SendRequest is the body of the send-otp route.
type SendRequest struct {
	MobileNumber string `json:"mobileNumber" validate:"required,min=10"`
	FullName     string `json:"fullName"`
}

// VerifyRequest is the body of the verify-otp route.
type VerifyRequest struct {
	MobileNumber string `json:"mobileNumber" validate:"required,min=10"`
	OTP          string `json:"otp" validate:"required,len=6,numeric"`
}

type Service interface {
	SendMobileOTP(ctx context.Context, mobileNumber, fullName string) error
	VerifyMobileOTP(ctx context.Context, mobileNumber, code string) (string, *models.User, error)
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
// @Summary Send a login OTP by SMS
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SendRequest true "Target mobile number"
// @Success 200 {object} response.Response "Code sent"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Delivery failed"
// @Router /api/auth/mobile/send-otp [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.mobileotp.send"

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

	if err := h.service.SendMobileOTP(r.Context(), req.MobileNumber, req.FullName); err != nil {
		log.Error("failed to send sms otp", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send otp"))
		return
	}

	log.Info("sms otp sent", slog.String("mobile", req.MobileNumber))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "OTP sent successfully",
	}))
}

// Verify godoc
// @Summary Verify an SMS OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Mobile number and code"
// @Success 200 {object} response.Response "Token and profile"
// @Failure 400 {object} response.ErrorResponse "Invalid or expired OTP"
// @Failure 404 {object} response.ErrorResponse "Unknown user"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/auth/mobile/verify-otp [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.mobileotp.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req VerifyRequest
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

	token, user, err := h.service.VerifyMobileOTP(r.Context(), req.MobileNumber, req.OTP)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Error("user not found", slog.String("mobile", req.MobileNumber))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, auth.ErrInvalidOTP):
		log.Error("invalid or expired otp", slog.String("mobile", req.MobileNumber))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or expired OTP"))
		return
	case err != nil:
		log.Error("failed to verify otp", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify otp"))
		return
	}

	log.Info("sms otp verified", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "OTP verified successfully",
		"token":   token,
		"user":    user.Public(),
	}))
}
