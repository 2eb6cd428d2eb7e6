// Package middlewarectx holds the HTTP middleware of the API: bearer
// token checks for users and admins, the global rate limiter and the
// request metrics.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/techcfa/cfa-backend/internal/http/response"
	"github.com/techcfa/cfa-backend/internal/lib/jwt"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
)

// Key is the type of the request-context keys set by this package.
type Key string

const (
	// UserKey holds the authenticated *models.User.
	UserKey Key = "user"
	// AdminKey holds the authenticated *models.Admin.
	AdminKey Key = "admin"
)

// UserProvider loads a user record for a token subject.
type UserProvider interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AdminProvider loads an admin record for a token subject.
type AdminProvider interface {
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
}

// UserFromContext returns the user attached by JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// AdminFromContext returns the admin attached by AdminMiddleware.
func AdminFromContext(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(AdminKey).(*models.Admin)
	return admin, ok
}

// JWTMiddleware checks the bearer token, loads the user record and
// attaches it to the request context. Deactivated accounts are
// rejected even when the token itself is still valid.
func JWTMiddleware(users UserProvider, jwtMaker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, ok := parseBearer(w, r, jwtMaker, log)
			if !ok {
				return
			}
			if claims.Role != "user" {
				log.Error("token role is not user", slog.String("role", claims.Role))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UID)
			if err != nil {
				log.Error("failed to load user for token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			if !user.IsActive {
				log.Error("deactivated account", slog.String("user_id", user.ID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("account is deactivated"))
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware is JWTMiddleware for backoffice tokens.
func AdminMiddleware(admins AdminProvider, jwtMaker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, ok := parseBearer(w, r, jwtMaker, log)
			if !ok {
				return
			}
			if claims.Role != models.RoleAdmin && claims.Role != models.RoleSuperAdmin {
				log.Error("token role is not admin", slog.String("role", claims.Role))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			admin, err := admins.GetAdminByID(r.Context(), claims.UID)
			if err != nil {
				log.Error("failed to load admin for token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			if !admin.IsActive {
				log.Error("deactivated admin", slog.String("admin_id", admin.ID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("account is deactivated"))
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBearer(w http.ResponseWriter, r *http.Request, jwtMaker jwt.Maker, log *slog.Logger) (*jwt.CustomClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("missing or invalid authorization header")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return nil, false
	}

	claims, err := jwtMaker.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		log.Error("invalid or expired token", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return nil, false
	}
	return claims, true
}
