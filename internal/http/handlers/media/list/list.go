// Package list serves the public media library with type/tag filters
// and offset pagination.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
)

type MediaProvider interface {
	ListPublishedMedia(ctx context.Context, mediaType, tag string, limit, offset int) ([]models.Media, int, error)
}

type Handler struct {
	log   *slog.Logger
	media MediaProvider
}

func New(log *slog.Logger, media MediaProvider) *Handler {
	return &Handler{log: log, media: media}
}

// ServeHTTP godoc
// @Summary List published media
// @Tags Media
// @Produce json
// @Param type query string false "Filter by type"
// @Param tag query string false "Filter by tag"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, default 10"
// @Success 200 {object} response.Response "Page of media"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := Pagination(r)
	mediaType := r.URL.Query().Get("type")
	tag := r.URL.Query().Get("tag")

	items, total, err := h.media.ListPublishedMedia(r.Context(), mediaType, tag, limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list media", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list media"))
		return
	}

	totalPages := (total + limit - 1) / limit
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"media":       items,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": page,
	}))
}

// Pagination reads 1-based page and limit query parameters with sane
// bounds. Shared by the list-style handlers.
func Pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
