// Package info serves the API landing page.
package info

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/response"
)

type Handler struct {
	version string
}

func New(version string) *Handler {
	return &Handler{version: version}
}

// ServeHTTP godoc
// @Summary API information
// @Tags Service
// @Produce json
// @Success 200 {object} response.Response "Service name, version and entry points"
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"name":    "CFA Backend API",
		"version": h.version,
		"endpoints": map[string]string{
			"auth":         "/api/auth",
			"subscription": "/api/subscription",
			"media":        "/api/media",
			"admin":        "/api/admin",
			"health":       "/health",
			"docs":         "/docs/index.html",
		},
	}))
}
