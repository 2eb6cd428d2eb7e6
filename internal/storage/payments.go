package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/techcfa/cfa-backend/internal/models"
)

const paymentColumns = `p.id, p.user_id, p.plan_id, COALESCE(pl.plan_name, ''),
	p.razorpay_order_id, COALESCE(p.razorpay_payment_id, ''),
	p.amount, p.status, p.created_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.UserID, &p.PlanID, &p.PlanName,
		&p.RazorpayOrderID, &p.RazorpayPaymentID,
		&p.Amount, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment records a pending payment for a freshly created
// gateway order.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	const op = "storage.CreatePayment"

	var id string
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO payments (user_id, plan_id, razorpay_order_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.UserID, p.PlanID, p.RazorpayOrderID, p.Amount, models.PaymentPending,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// CompletePaymentAndActivate moves a pending payment with the given
// gateway order id to completed and activates the user's subscription,
// all in one transaction. The conditional UPDATE guarantees a callback
// replayed for an already-completed order changes nothing and reports
// ErrNotFound.
func (s *Storage) CompletePaymentAndActivate(
	ctx context.Context,
	userID, orderID, paymentID string,
	durationMonths int,
	planName string,
	members []models.Member,
) (*models.Payment, error) {
	const op = "storage.CompletePaymentAndActivate"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var p models.Payment
	err = tx.QueryRowContext(ctx, `
		UPDATE payments
		SET status = $3, razorpay_payment_id = $4
		WHERE razorpay_order_id = $1 AND user_id = $2 AND status = $5
		RETURNING id, user_id, plan_id, razorpay_order_id, razorpay_payment_id,
			amount, status, created_at`,
		orderID, userID, models.PaymentCompleted, paymentID, models.PaymentPending,
	).Scan(
		&p.ID, &p.UserID, &p.PlanID, &p.RazorpayOrderID, &p.RazorpayPaymentID,
		&p.Amount, &p.Status, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.PlanName = planName

	start := time.Now().UTC()
	end := start.AddDate(0, durationMonths, 0)

	memberData, err := marshalJSON(members)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET subscription_plan_id = $2,
			subscription_plan_name = $3,
			subscription_status = $4,
			subscription_start = $5,
			subscription_end = $6,
			subscription_payment_id = $7,
			subscription_amount = $8,
			additional_members = $9,
			updated_at = now()
		WHERE id = $1`,
		userID, p.PlanID, planName, models.SubscriptionActive,
		start, end, p.ID, p.Amount, memberData,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// GetPaymentByOrderID returns the payment created for a gateway order.
func (s *Storage) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	const op = "storage.GetPaymentByOrderID"

	row := s.DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments p
		LEFT JOIN plans pl ON pl.plan_id = p.plan_id
		WHERE p.razorpay_order_id = $1`, orderID)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPaymentsByUser returns a user's payment history, newest first.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	const op = "storage.ListPaymentsByUser"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments p
		LEFT JOIN plans pl ON pl.plan_id = p.plan_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectPayments(op, rows)
}

// ListPayments returns a page of all payments for the backoffice,
// optionally filtered by status, along with the total match count.
func (s *Storage) ListPayments(ctx context.Context, status string, limit, offset int) ([]models.Payment, int, error) {
	const op = "storage.ListPayments"

	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT count(*) FROM payments
		WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments p
		LEFT JOIN plans pl ON pl.plan_id = p.plan_id
		WHERE ($1 = '' OR p.status = $1)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	payments, err := collectPayments(op, rows)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func collectPayments(op string, rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}
