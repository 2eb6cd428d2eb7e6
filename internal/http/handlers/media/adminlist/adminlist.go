// Package adminlist serves the backoffice media listing, drafts
// included.
package adminlist

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

type MediaProvider interface {
	ListAdminMedia(ctx context.Context, mediaType string, published *bool, limit, offset int) ([]models.Media, int, error)
}

type Handler struct {
	log   *slog.Logger
	media MediaProvider
}

func New(log *slog.Logger, media MediaProvider) *Handler {
	return &Handler{log: log, media: media}
}

// ServeHTTP godoc
// @Summary List all active media for the backoffice
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type"
// @Param status query string false "draft or published"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, default 10"
// @Success 200 {object} response.Response "Page of media"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media/admin/all [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.adminlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := list.Pagination(r)
	mediaType := r.URL.Query().Get("type")

	var published *bool
	switch r.URL.Query().Get("status") {
	case "draft":
		v := false
		published = &v
	case "published":
		v := true
		published = &v
	}

	items, total, err := h.media.ListAdminMedia(r.Context(), mediaType, published, limit, (page-1)*limit)
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
