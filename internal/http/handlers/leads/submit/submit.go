// Package submit handles the public lead-capture form and forwards
// each submission to the Google Sheet.
package submit

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/sheets"
)

type Request struct {
	FullName      string `json:"fullName" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone,omitempty"`
	City          string `json:"city" validate:"required"`
	ContactingAs  string `json:"contactingAs,omitempty"`
	HelpType      string `json:"helpType,omitempty"`
	Message       string `json:"message" validate:"required"`
	PreferredMode string `json:"preferredMode,omitempty"`
	BestTime      string `json:"bestTime,omitempty"`
}

type Handler struct {
	log           *slog.Logger
	writer        sheets.Writer
	spreadsheetID string
	validate      *validator.Validate
}

func New(log *slog.Logger, writer sheets.Writer, spreadsheetID string) *Handler {
	return &Handler{
		log:           log,
		writer:        writer,
		spreadsheetID: spreadsheetID,
		validate:      validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Submit contact form
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body Request true "Lead details"
// @Success 200 {object} response.Response "Form submitted"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Sheet append failed"
// @Router /submit-form [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.leads.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	row := []any{
		req.FullName, req.Email, req.Phone, req.City, req.ContactingAs,
		req.HelpType, req.Message, req.PreferredMode, req.BestTime,
	}
	if err := h.writer.AppendRow(r.Context(), h.spreadsheetID, row); err != nil {
		log.Error("failed to append lead row", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to submit form"))
		return
	}

	log.Info("lead captured", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Form submitted successfully",
	}))
}
