// Package create implements the backoffice media creation endpoint.
// Publishing a broadcast item emits a notification event.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/middlewarectx"
	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
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
	CreateMedia(ctx context.Context, m models.Media) (string, error)
}

// Broadcaster emits the event the notifier worker consumes.
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
// @Summary Create a media item
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Media item"
// @Success 200 {object} response.Response "Created id"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/media [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.media.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	admin, ok := middlewarectx.AdminFromContext(r.Context())
	if !ok {
		log.Error("admin not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	item := models.Media{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         req.Tags,
		IsPublished:  req.IsPublished,
		IsBroadcast:  req.IsBroadcast,
		CreatedBy:    admin.ID,
	}
	id, err := h.media.CreateMedia(r.Context(), item)
	if err != nil {
		log.Error("failed to create media", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create media"))
		return
	}

	if req.IsPublished && req.IsBroadcast {
		event := models.BroadcastEvent{
			MediaID:     id,
			Title:       req.Title,
			Description: req.Description,
			Type:        req.Type,
		}
		if err := h.broadcaster.PublishBroadcast(event); err != nil {
			// Notification is best effort, the item is already saved.
			log.Warn("failed to publish broadcast event", sl.Err(err))
		}
	}

	log.Info("media created", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Media created successfully",
		"id":      id,
	}))
}
