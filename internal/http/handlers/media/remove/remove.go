// Package remove implements the backoffice soft delete of a media item.
package remove

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
	"github.com/techcfa/cfa-backend/internal/storage"
)

type MediaStore interface {
	SoftDeleteMedia(ctx context.Context, id string) error
}

type Handler struct {
	log   *slog.Logger
	media MediaStore
}

func New(log *slog.Logger, media MediaStore) *Handler {
	return &Handler{log: log, media: media}
}

// ServeHTTP godoc
// @Summary Soft-delete a media item
// @Description Flips the active flag; the row stays in place and disappears from all listings.
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media id"
// @Success 200 {object} response.Response "Deleted"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	err := h.media.SoftDeleteMedia(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("media not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("media not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete media", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete media"))
		return
	}

	log.Info("media soft-deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Media deleted successfully",
	}))
}
