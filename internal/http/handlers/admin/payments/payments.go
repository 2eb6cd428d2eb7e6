// Package payments lists payment records for the backoffice.
package payments

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

type PaymentLister interface {
	ListPayments(ctx context.Context, status string, limit, offset int) ([]models.Payment, int, error)
}

type Handler struct {
	log      *slog.Logger
	payments PaymentLister
}

func New(log *slog.Logger, payments PaymentLister) *Handler {
	return &Handler{log: log, payments: payments}
}

// ServeHTTP godoc
// @Summary List payments
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Payment status filter" Enums(pending, completed, failed)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response "Paginated payments"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.payments"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := r.URL.Query().Get("status")
	page, limit := list.Pagination(r)

	items, total, err := h.payments.ListPayments(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list payments"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payments":    items,
		"total":       total,
		"totalPages":  (total + limit - 1) / limit,
		"currentPage": page,
	}))
}
