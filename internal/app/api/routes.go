package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/techcfa/cfa-backend/internal/config"
	admindashboard "github.com/techcfa/cfa-backend/internal/http/handlers/admin/dashboard"
	adminlogin "github.com/techcfa/cfa-backend/internal/http/handlers/admin/login"
	adminpayments "github.com/techcfa/cfa-backend/internal/http/handlers/admin/payments"
	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/plancreate"
	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/planlist"
	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/planupdate"
	adminprofile "github.com/techcfa/cfa-backend/internal/http/handlers/admin/profile"
	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/userdetail"
	adminusers "github.com/techcfa/cfa-backend/internal/http/handlers/admin/users"
	"github.com/techcfa/cfa-backend/internal/http/handlers/admin/usersubscription"
	"github.com/techcfa/cfa-backend/internal/http/handlers/auth/forgotpassword"
	"github.com/techcfa/cfa-backend/internal/http/handlers/auth/login"
	"github.com/techcfa/cfa-backend/internal/http/handlers/auth/mobileotp"
	"github.com/techcfa/cfa-backend/internal/http/handlers/auth/sendotp"
	"github.com/techcfa/cfa-backend/internal/http/handlers/auth/signupotp"
	"github.com/techcfa/cfa-backend/internal/http/handlers/auth/verifyotp"
	"github.com/techcfa/cfa-backend/internal/http/handlers/health"
	"github.com/techcfa/cfa-backend/internal/http/handlers/info"
	"github.com/techcfa/cfa-backend/internal/http/handlers/leads/headers"
	"github.com/techcfa/cfa-backend/internal/http/handlers/leads/submit"
	"github.com/techcfa/cfa-backend/internal/http/handlers/media/adminlist"
	"github.com/techcfa/cfa-backend/internal/http/handlers/media/broadcast"
	mediacreate "github.com/techcfa/cfa-backend/internal/http/handlers/media/create"
	mediaget "github.com/techcfa/cfa-backend/internal/http/handlers/media/get"
	medialist "github.com/techcfa/cfa-backend/internal/http/handlers/media/list"
	mediaremove "github.com/techcfa/cfa-backend/internal/http/handlers/media/remove"
	mediaupdate "github.com/techcfa/cfa-backend/internal/http/handlers/media/update"
	"github.com/techcfa/cfa-backend/internal/http/handlers/subscription/cancel"
	"github.com/techcfa/cfa-backend/internal/http/handlers/subscription/createorder"
	"github.com/techcfa/cfa-backend/internal/http/handlers/subscription/mysubscription"
	"github.com/techcfa/cfa-backend/internal/http/handlers/subscription/paymenthistory"
	"github.com/techcfa/cfa-backend/internal/http/handlers/subscription/plans"
	"github.com/techcfa/cfa-backend/internal/http/handlers/subscription/verifypayment"
	"github.com/techcfa/cfa-backend/internal/http/middlewarectx"
	"github.com/techcfa/cfa-backend/internal/lib/jwt"
	"github.com/techcfa/cfa-backend/internal/services/auth"
	"github.com/techcfa/cfa-backend/internal/services/subscription"
	"github.com/techcfa/cfa-backend/internal/sheets"
	"github.com/techcfa/cfa-backend/internal/storage"
)

// Deps carries everything the router needs.
type Deps struct {
	DB           *storage.Storage
	JWTMaker     jwt.Maker
	Auth         *auth.Service
	Subscription *subscription.Service
	Broadcaster  mediacreate.Broadcaster
	Sheets       sheets.Writer
}

// RegisterRoutes registers all application routes.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger, cfg.RateLimitPerSec, cfg.RateLimitBurst),
		middlewarectx.MetricsMiddleware,
	)

	userAuth := middlewarectx.JWTMiddleware(d.DB, d.JWTMaker, logger)
	adminAuth := middlewarectx.AdminMiddleware(d.DB, d.JWTMaker, logger)

	r.Route("/api/auth", func(r chi.Router) {
		emailOTP := sendotp.New(logger, d.Auth)
		r.Post("/email/send-otp", emailOTP.ServeHTTP)
		r.Post("/email/resend-otp", emailOTP.ServeHTTP)
		r.Post("/email/verify-otp", verifyotp.New(logger, d.Auth, "Email verified successfully").ServeHTTP)

		signupOTP := signupotp.New(logger, d.Auth)
		r.Post("/signup/send-otp", signupOTP.ServeHTTP)
		r.Post("/signup/resend-otp", signupOTP.ServeHTTP)
		r.Post("/signup/verify-otp", verifyotp.New(logger, d.Auth, "Account created successfully").ServeHTTP)

		mobile := mobileotp.New(logger, d.Auth)
		r.Post("/mobile/send-otp", mobile.Send)
		r.Post("/mobile/verify-otp", mobile.Verify)

		r.Post("/login", login.New(logger, d.Auth).ServeHTTP)

		forgot := forgotpassword.New(logger, d.Auth)
		r.Post("/forgot-password/send-otp", forgot.Send)
		r.Post("/forgot-password/resend-otp", forgot.Send)
		r.Post("/forgot-password/verify-otp", forgot.Reset)
	})

	r.Route("/api/subscription", func(r chi.Router) {
		r.Get("/plans", plans.New(logger, d.Subscription).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(userAuth)
			r.Get("/my-subscription", mysubscription.New(logger).ServeHTTP)
			r.Post("/create-order", createorder.New(logger, d.Subscription).ServeHTTP)
			r.Post("/verify-payment", verifypayment.New(logger, d.Subscription).ServeHTTP)
			r.Post("/cancel", cancel.New(logger, d.Subscription).ServeHTTP)
			r.Get("/payments", paymenthistory.New(logger, d.Subscription).ServeHTTP)
		})
	})

	r.Route("/api/media", func(r chi.Router) {
		r.Get("/", medialist.New(logger, d.DB).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(userAuth)
			r.Get("/broadcast/updates", broadcast.New(logger, d.DB).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Post("/", mediacreate.New(logger, d.DB, d.Broadcaster).ServeHTTP)
			r.Put("/{id}", mediaupdate.New(logger, d.DB, d.Broadcaster).ServeHTTP)
			r.Delete("/{id}", mediaremove.New(logger, d.DB).ServeHTTP)
			r.Get("/admin/all", adminlist.New(logger, d.DB).ServeHTTP)
		})

		r.Get("/{id}", mediaget.New(logger, d.DB).ServeHTTP)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", adminlogin.New(logger, d.Auth).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Get("/profile", adminprofile.New(logger).ServeHTTP)
			r.Get("/dashboard", admindashboard.New(logger, d.DB).ServeHTTP)
			r.Get("/users", adminusers.New(logger, d.DB).ServeHTTP)
			r.Get("/users/{id}", userdetail.New(logger, d.DB).ServeHTTP)
			r.Put("/users/{id}/subscription", usersubscription.New(logger, d.DB).ServeHTTP)
			r.Get("/subscriptions", planlist.New(logger, d.Subscription).ServeHTTP)
			r.Post("/subscriptions", plancreate.New(logger, d.Subscription).ServeHTTP)
			r.Put("/subscriptions/{id}", planupdate.New(logger, d.Subscription).ServeHTTP)
			r.Get("/payments", adminpayments.New(logger, d.DB).ServeHTTP)
		})
	})

	r.Get("/create-headers", headers.New(logger, d.Sheets, cfg.SpreadsheetID).ServeHTTP)
	r.Post("/submit-form", submit.New(logger, d.Sheets, cfg.SpreadsheetID).ServeHTTP)

	r.Get("/health", health.New(logger, d.DB).ServeHTTP)
	r.Get("/", info.New("1.0").ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
