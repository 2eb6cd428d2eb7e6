// Package headers initializes the lead-capture sheet's header row.
package headers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/sheets"
)

type Handler struct {
	log           *slog.Logger
	writer        sheets.Writer
	spreadsheetID string
}

func New(log *slog.Logger, writer sheets.Writer, spreadsheetID string) *Handler {
	return &Handler{log: log, writer: writer, spreadsheetID: spreadsheetID}
}

// ServeHTTP godoc
// @Summary Write sheet headers
// @Tags Leads
// @Produce json
// @Success 200 {object} response.Response "Headers created"
// @Failure 500 {object} response.ErrorResponse "Sheet write failed"
// @Router /create-headers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.leads.headers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.writer.CreateHeaders(r.Context(), h.spreadsheetID); err != nil {
		log.Error("failed to create sheet headers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create headers"))
		return
	}

	log.Info("sheet headers created")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Headers created",
	}))
}
