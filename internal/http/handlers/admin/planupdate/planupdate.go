// Package planupdate edits an existing catalog entry.
package planupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type Request struct {
	PlanName       string     `json:"planName" validate:"required"`
	Description    string     `json:"description"`
	Price          int        `json:"price" validate:"required,min=0"`
	SpecialPrice   *int       `json:"specialPrice,omitempty" validate:"omitempty,min=0"`
	DurationMonths int        `json:"duration" validate:"required,min=1"`
	MaxMembers     int        `json:"maxMembers" validate:"min=1"`
	Features       []string   `json:"features"`
	IsActive       bool       `json:"isActive"`
	IsSpecialOffer bool       `json:"isSpecialOffer"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidTo        *time.Time `json:"validTo,omitempty"`
}

type Service interface {
	UpdatePlan(ctx context.Context, p models.Plan) error
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
// @Summary Update plan
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Plan record ID"
// @Param request body Request true "Plan fields"
// @Success 200 {object} response.Response "Plan updated"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/plans/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.planupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

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

	err := h.service.UpdatePlan(r.Context(), models.Plan{
		ID:             id,
		PlanName:       req.PlanName,
		Description:    req.Description,
		Price:          req.Price,
		SpecialPrice:   req.SpecialPrice,
		DurationMonths: req.DurationMonths,
		MaxMembers:     req.MaxMembers,
		Features:       req.Features,
		IsActive:       req.IsActive,
		IsSpecialOffer: req.IsSpecialOffer,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
	})
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("plan not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update plan"))
		return
	}

	log.Info("plan updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Plan updated",
	}))
}
