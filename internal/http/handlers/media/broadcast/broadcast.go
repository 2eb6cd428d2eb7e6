// Package broadcast serves the latest broadcast updates ticker.
package broadcast

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
)

const updatesLimit = 10

type MediaProvider interface {
	ListBroadcastUpdates(ctx context.Context, limit int) ([]models.Media, error)
}

type Handler struct {
	log   *slog.Logger
	media MediaProvider
}

func New(log *slog.Logger, media MediaProvider) *Handler {
	return &Handler{log: log, media: media}
}

// ServeHTTP godoc
// @Summary List the latest broadcast updates
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Latest broadcast items"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media/broadcast/updates [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.broadcast"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.media.ListBroadcastUpdates(r.Context(), updatesLimit)
	if err != nil {
		log.Error("failed to list broadcast updates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list updates"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updates": items,
	}))
}
