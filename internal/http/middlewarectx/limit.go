package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/techcfa/cfa-backend/internal/http/response"
)

// RateLimitMiddleware applies one shared token bucket to every request.
func RateLimitMiddleware(log *slog.Logger, perSec, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(perSec), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
