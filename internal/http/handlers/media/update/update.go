// Package update implements the backoffice media edit endpoint.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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
	Title        string   `json:"title" validate:"required,min=2"`
	Description  string   `json:"description"`
	Type         string   `json:"type" validate:"required,oneof=article video banner update alert"`
	Content      string   `json:"content"`
	MediaURL     string   `json:"mediaUrl" validate:"omitempty,url"`
	ThumbnailURL string   `json:"thumbnailUrl" validate:"omitempty,url"`
	Tags         []string `json:"tags"`
	IsPublished  bool     `json:"isPublished"`
	IsBroadcast  bool     `json:"isBroadcast"`
}

type MediaStore interface {
	GetMediaByID(ctx context.Context, id string) (*models.Media, error)
	UpdateMedia(ctx context.Context, m models.Media) (*models.Media, error)
}

type Broadcaster interface {
	PublishBroadcast(event models.BroadcastEvent) error
}

type Handler struct {
	log         *slog.Logger
	media       MediaStore
	broadcaster Broadcaster
	validate    *validator.Validate
}

func New(log *slog.Logger, media MediaStore, broadcaster Broadcaster) *Handler {
	return &Handler{
		log:         log,
		media:       media,
		broadcaster: broadcaster,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Update a media item
// @Description Overwrites the editable fields. The publish timestamp is stamped on the first transition to published. Newly published broadcast items emit a notification event.
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media id"
// @Param request body Request true "Media item"
// @Success 200 {object} response.Response "Updated item"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.update"

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

	current, err := h.media.GetMediaByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("media not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("media not found"))
		return
	}
	if err != nil {
		log.Error("failed to load media", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update media"))
		return
	}
	wasLive := current.IsPublished && current.IsBroadcast

	updated, err := h.media.UpdateMedia(r.Context(), models.Media{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         req.Tags,
		IsPublished:  req.IsPublished,
		IsBroadcast:  req.IsBroadcast,
	})
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("media not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("media not found"))
		return
	}
	if err != nil {
		log.Error("failed to update media", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update media"))
		return
	}

	if updated.IsPublished && updated.IsBroadcast && !wasLive {
		event := models.BroadcastEvent{
			MediaID:     updated.ID,
			Title:       updated.Title,
			Description: updated.Description,
			Type:        updated.Type,
		}
		if err := h.broadcaster.PublishBroadcast(event); err != nil {
			log.Warn("failed to publish broadcast event", sl.Err(err))
		}
	}

	log.Info("media updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Media updated successfully",
		"media":   updated,
	}))
}
