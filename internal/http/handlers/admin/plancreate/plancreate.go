// Package plancreate adds a plan to the catalog.
package plancreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type Request struct {
	PlanID         string     `json:"planId" validate:"required"`
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
	CreatePlan(ctx context.Context, p models.Plan) (string, error)
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
// @Summary Create plan
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "New plan"
// @Success 200 {object} response.Response "Created plan ID"
// @Failure 400 {object} response.ErrorResponse "Duplicate plan ID"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.plancreate"

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

	id, err := h.service.CreatePlan(r.Context(), models.Plan{
		PlanID:         req.PlanID,
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
	if errors.Is(err, storage.ErrDuplicate) {
		log.Error("plan already exists", slog.String("plan_id", req.PlanID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("plan with this ID already exists"))
		return
	}
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create plan"))
		return
	}

	log.Info("plan created", slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Plan created",
		"id":      id,
	}))
}
