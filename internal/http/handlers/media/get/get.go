// Package get serves one published media item. The read bumps the view
// counter.
package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type MediaProvider interface {
	GetPublishedMedia(ctx context.Context, id string) (*models.Media, error)
}

type Handler struct {
	log   *slog.Logger
	media MediaProvider
}

func New(log *slog.Logger, media MediaProvider) *Handler {
	return &Handler{log: log, media: media}
}

// ServeHTTP godoc
// @Summary Get one published media item
// @Description Returns the item and increments its view counter. Drafts and soft-deleted items are 404.
// @Tags Media
// @Produce json
// @Param id path string true "Media id"
// @Success 200 {object} response.Response "Media item"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	item, err := h.media.GetPublishedMedia(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("media not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("media not found"))
		return
	}
	if err != nil {
		log.Error("failed to get media", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get media"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"media": item,
	}))
}
