// Package dashboard serves the backoffice overview counters.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/users"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type StatsProvider interface {
	GetDashboardStats(ctx context.Context) (*storage.DashboardStats, error)
}

type Handler struct {
	log   *slog.Logger
	stats StatsProvider
}

func New(log *slog.Logger, stats StatsProvider) *Handler {
	return &Handler{log: log, stats: stats}
}

// ServeHTTP godoc
// @Summary Dashboard statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Aggregated counters and recent activity"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.stats.GetDashboardStats(r.Context())
	if err != nil {
		log.Error("failed to load dashboard stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load dashboard"))
		return
	}

	recent := make([]map[string]any, 0, len(stats.RecentUsers))
	for _, u := range stats.RecentUsers {
		recent = append(recent, users.UserRow(&u))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"totalUsers":          stats.TotalUsers,
		"activeSubscriptions": stats.ActiveSubscriptions,
		"totalRevenue":        stats.TotalRevenue,
		"totalMedia":          stats.TotalMedia,
		"mediaByType":         stats.MediaByType,
		"recentUsers":         recent,
		"recentPayments":      stats.RecentPayments,
	}))
}
