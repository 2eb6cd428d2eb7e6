package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/techcfa/cfa-backend/internal/models"
)

const planColumns = `id, plan_id, plan_name, COALESCE(description, ''),
	price, special_price, duration_months, max_members, features,
	is_active, is_special_offer, valid_from, valid_to, created_at`

func scanPlan(row rowScanner) (*models.Plan, error) {
	var p models.Plan
	var features []byte
	err := row.Scan(
		&p.ID, &p.PlanID, &p.PlanName, &p.Description,
		&p.Price, &p.SpecialPrice, &p.DurationMonths, &p.MaxMembers, &features,
		&p.IsActive, &p.IsSpecialOffer, &p.ValidFrom, &p.ValidTo, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(features, &p.Features); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan inserts a catalog entry and returns its id.
func (s *Storage) CreatePlan(ctx context.Context, p models.Plan) (string, error) {
	const op = "storage.CreatePlan"

	features, err := marshalJSON(p.Features)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO plans (plan_id, plan_name, description, price, special_price,
			duration_months, max_members, features, is_active, is_special_offer,
			valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		p.PlanID, p.PlanName, p.Description, p.Price, p.SpecialPrice,
		p.DurationMonths, p.MaxMembers, features, p.IsActive, p.IsSpecialOffer,
		p.ValidFrom, p.ValidTo,
	).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdatePlan overwrites the mutable fields of a catalog entry.
func (s *Storage) UpdatePlan(ctx context.Context, p models.Plan) error {
	const op = "storage.UpdatePlan"

	features, err := marshalJSON(p.Features)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE plans SET plan_name = $2, description = $3, price = $4,
			special_price = $5, duration_months = $6, max_members = $7,
			features = $8, is_active = $9, is_special_offer = $10,
			valid_from = $11, valid_to = $12
		WHERE id = $1`,
		p.ID, p.PlanName, p.Description, p.Price,
		p.SpecialPrice, p.DurationMonths, p.MaxMembers,
		features, p.IsActive, p.IsSpecialOffer,
		p.ValidFrom, p.ValidTo,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// GetPlanByID returns a plan by its business identifier (plan_id, not
// the surrogate key) or ErrNotFound.
func (s *Storage) GetPlanByID(ctx context.Context, planID string) (*models.Plan, error) {
	const op = "storage.GetPlanByID"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE plan_id = $1`, planID)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListActivePlans returns the public catalog ordered by price ascending.
func (s *Storage) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListActivePlans"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE is_active = TRUE ORDER BY price ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectPlans(op, rows)
}

// ListAllPlans returns the full catalog for the backoffice, newest first.
func (s *Storage) ListAllPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListAllPlans"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectPlans(op, rows)
}

func collectPlans(op string, rows *sql.Rows) ([]models.Plan, error) {
	var plans []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}
