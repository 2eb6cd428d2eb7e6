// Command seed creates the initial admin account and the default plan
// catalog. Safe to re-run: existing records are left untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/techcfa/cfa-backend/internal/config"
	"github.com/techcfa/cfa-backend/internal/lib/password"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/migrations"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/storage"
)

func main() {
	var (
		adminUser = flag.String("admin-user", "admin", "initial admin username")
		adminPass = flag.String("admin-pass", "", "initial admin password (required)")
		adminMail = flag.String("admin-email", "admin@techcfa.in", "initial admin email")
	)
	flag.Parse()

	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	if *adminPass == "" {
		logger.Error("admin-pass flag is required")
		os.Exit(1)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to open storage", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	ctx := context.Background()

	if err := seedAdmin(ctx, db, *adminUser, *adminPass, *adminMail); err != nil {
		logger.Error("failed to seed admin", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("admin ready", slog.String("username", *adminUser))

	for _, plan := range defaultPlans() {
		_, err := db.CreatePlan(ctx, plan)
		if errors.Is(err, storage.ErrDuplicate) {
			logger.Info("plan already exists", slog.String("plan_id", plan.PlanID))
			continue
		}
		if err != nil {
			logger.Error("failed to seed plan", slog.String("plan_id", plan.PlanID), sl.Err(err))
			os.Exit(1)
		}
		logger.Info("plan created", slog.String("plan_id", plan.PlanID))
	}
}

func seedAdmin(ctx context.Context, db *storage.Storage, username, pass, email string) error {
	hash, err := password.GetHash(pass)
	if err != nil {
		return err
	}

	_, err = db.CreateAdmin(ctx, models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil
	}
	return err
}

func defaultPlans() []models.Plan {
	return []models.Plan{
		{
			PlanID:         "basic",
			PlanName:       "Basic Protection",
			Description:    "Fraud alerts and awareness content for one person",
			Price:          499,
			DurationMonths: 12,
			MaxMembers:     1,
			Features: []string{
				"Fraud alerts",
				"Awareness videos and articles",
				"Email support",
			},
			IsActive: true,
		},
		{
			PlanID:         "family",
			PlanName:       "Family Protection",
			Description:    "Covers the subscriber and up to three family members",
			Price:          999,
			DurationMonths: 12,
			MaxMembers:     4,
			Features: []string{
				"Fraud alerts",
				"Awareness videos and articles",
				"Coverage for family members",
				"Priority email support",
			},
			IsActive: true,
		},
	}
}
