// Package subscription implements the plan catalog, order creation and
// payment verification flow.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/techcfa/cfa-backend/internal/cache"
	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/razorpay"
	"github.com/techcfa/cfa-backend/internal/sheets"
	"github.com/techcfa/cfa-backend/internal/storage"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrAlreadyActive    = errors.New("subscription is already active")
	ErrNotActive        = errors.New("no active subscription")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// Currency is what every order is billed in.
const Currency = "INR"

// Repository is the storage surface of the flow.
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CancelSubscription(ctx context.Context, userID string) error

	GetPlanByID(ctx context.Context, planID string) (*models.Plan, error)
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
	ListAllPlans(ctx context.Context) ([]models.Plan, error)
	CreatePlan(ctx context.Context, p models.Plan) (string, error)
	UpdatePlan(ctx context.Context, p models.Plan) error

	CreatePayment(ctx context.Context, p models.Payment) (string, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	CompletePaymentAndActivate(ctx context.Context, userID, orderID, paymentID string,
		durationMonths int, planName string, members []models.Member) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)
}

// PlanCache caches the public plan catalog.
type PlanCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service wires the repository, the payment gateway, the catalog cache
// and the lead spreadsheet together.
type Service struct {
	repo          Repository
	orders        razorpay.OrderCreator
	planCache     PlanCache
	sheetsWriter  sheets.Writer
	keySecret     string
	spreadsheetID string
	freeUserLimit int
	plansCacheTTL time.Duration
	log           *slog.Logger
}

// New creates the subscription service.
func New(repo Repository, orders razorpay.OrderCreator, planCache PlanCache,
	sheetsWriter sheets.Writer, keySecret, spreadsheetID string,
	freeUserLimit int, plansCacheTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		orders:        orders,
		planCache:     planCache,
		sheetsWriter:  sheetsWriter,
		keySecret:     keySecret,
		spreadsheetID: spreadsheetID,
		freeUserLimit: freeUserLimit,
		plansCacheTTL: plansCacheTTL,
		log:           log,
	}
}

// ListPlans returns the public catalog, served from the cache when warm.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "subscription.ListPlans"

	var plans []models.Plan
	found, err := s.planCache.Get(ctx, cache.PlansKey, &plans)
	if err != nil {
		s.log.Warn("plan cache read failed", sl.Err(err))
	}
	if found {
		return plans, nil
	}

	plans, err = s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.planCache.Set(ctx, cache.PlansKey, plans, s.plansCacheTTL); err != nil {
		s.log.Warn("plan cache write failed", sl.Err(err))
	}
	return plans, nil
}

// ListAllPlans returns the full catalog for the backoffice.
func (s *Service) ListAllPlans(ctx context.Context) ([]models.Plan, error) {
	return s.repo.ListAllPlans(ctx)
}

// CreatePlan adds a catalog entry and drops the cached public list.
func (s *Service) CreatePlan(ctx context.Context, p models.Plan) (string, error) {
	const op = "subscription.CreatePlan"

	id, err := s.repo.CreatePlan(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.invalidatePlans(ctx)
	return id, nil
}

// UpdatePlan edits a catalog entry and drops the cached public list.
func (s *Service) UpdatePlan(ctx context.Context, p models.Plan) error {
	const op = "subscription.UpdatePlan"

	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidatePlans(ctx)
	return nil
}

func (s *Service) invalidatePlans(ctx context.Context) {
	if err := s.planCache.Invalidate(ctx, cache.PlansKey); err != nil {
		s.log.Warn("plan cache invalidation failed", sl.Err(err))
	}
}

// OrderResult is what create-order hands back to the client.
type OrderResult struct {
	OrderID    string
	Amount     int
	Currency   string
	IsFreeUser bool
	Plan       *models.Plan
}

// CreateOrder computes the price for a plan, creates a gateway order
// and records a pending payment. The first users up to the configured
// threshold pay nothing.
func (s *Service) CreateOrder(ctx context.Context, user *models.User, planID string, members []models.Member) (*OrderResult, error) {
	const op = "subscription.CreateOrder"

	if user.Subscription.Status == models.SubscriptionActive {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyActive)
	}

	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	amount := plan.OrderAmount()
	isFree := total <= s.freeUserLimit
	if isFree {
		amount = 0
	}

	order, err := s.orders.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount * 100, // paise
		Currency: Currency,
		Receipt:  "order_" + uuid.NewString(),
		Notes: map[string]string{
			"userId": user.ID,
			"planId": plan.PlanID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.repo.CreatePayment(ctx, models.Payment{
		UserID:          user.ID,
		PlanID:          plan.PlanID,
		RazorpayOrderID: order.ID,
		Amount:          amount,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &OrderResult{
		OrderID:    order.ID,
		Amount:     amount,
		Currency:   Currency,
		IsFreeUser: isFree,
		Plan:       plan,
	}, nil
}

// VerifyPayment checks the gateway signature, completes the pending
// payment and activates the user's subscription. A failed spreadsheet
// write is logged and swallowed: activation already happened.
func (s *Service) VerifyPayment(ctx context.Context, user *models.User, orderID, paymentID, signature string, members []models.Member) (*models.UserSubscription, error) {
	const op = "subscription.VerifyPayment"

	if !razorpay.VerifySignature(orderID, paymentID, signature, s.keySecret) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	payment, err := s.repo.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	plan, err := s.repo.GetPlanByID(ctx, payment.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Members replace the stored list only when the callback actually
	// carries some; an empty list keeps what the user already has.
	if len(members) == 0 {
		members = user.Members
	}
	if _, err := s.repo.CompletePaymentAndActivate(ctx, user.ID, orderID, paymentID,
		plan.DurationMonths, plan.PlanName, members); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendLeadRow(ctx, updated)

	return &updated.Subscription, nil
}

// appendLeadRow mirrors the activation into the legacy spreadsheet.
// Best effort only.
func (s *Service) appendLeadRow(ctx context.Context, user *models.User) {
	if s.spreadsheetID == "" {
		return
	}
	row := []any{
		user.FullName, user.Email, user.MobileNumber, "", "subscriber",
		user.Subscription.PlanName, fmt.Sprintf("subscription activated, amount %d", user.Subscription.Amount),
		"", time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.sheetsWriter.AppendRow(ctx, s.spreadsheetID, row); err != nil {
		s.log.Warn("spreadsheet append failed", sl.Err(err))
	}
}

// Cancel flips an active subscription to inactive.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	const op = "subscription.Cancel"

	err := s.repo.CancelSubscription(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotActive)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PaymentHistory returns the caller's payments, newest first.
func (s *Service) PaymentHistory(ctx context.Context, userID string) ([]models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userID)
}
