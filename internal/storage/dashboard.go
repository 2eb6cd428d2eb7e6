package storage

import (
	"context"
	"fmt"

	"github.com/techcfa/cfa-backend/internal/models"
)

// DashboardStats is the aggregate snapshot shown on the backoffice
// landing page.
type DashboardStats struct {
	TotalUsers          int                     `json:"totalUsers"`
	ActiveSubscriptions int                     `json:"activeSubscriptions"`
	TotalRevenue        int                     `json:"totalRevenue"`
	TotalMedia          int                     `json:"totalMedia"`
	MediaByType         []models.MediaTypeCount `json:"mediaByType"`
	RecentUsers         []models.User           `json:"-"`
	RecentPayments      []models.Payment        `json:"recentPayments"`
}

// GetDashboardStats collects the counters, the revenue sum and the
// recent-activity lists in one call.
func (s *Storage) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	const op = "storage.GetDashboardStats"

	var stats DashboardStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM users WHERE subscription_status = $1),
			(SELECT COALESCE(sum(amount), 0) FROM payments WHERE status = $2),
			(SELECT count(*) FROM media WHERE is_active = TRUE)`,
		models.SubscriptionActive, models.PaymentCompleted,
	).Scan(&stats.TotalUsers, &stats.ActiveSubscriptions,
		&stats.TotalRevenue, &stats.TotalMedia)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT type, count(*) FROM media
		WHERE is_active = TRUE
		GROUP BY type
		ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.MediaTypeCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.MediaByType = append(stats.MediaByType, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	userRows, err := s.DB.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer userRows.Close()
	for userRows.Next() {
		u, err := scanUser(userRows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.RecentUsers = append(stats.RecentUsers, *u)
	}
	if err := userRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payRows, err := s.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments p
		LEFT JOIN plans pl ON pl.plan_id = p.plan_id
		ORDER BY p.created_at DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer payRows.Close()
	stats.RecentPayments, err = collectPayments(op, payRows)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
