package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/techcfa/cfa-backend/internal/models"
)

const mediaColumns = `id, title, COALESCE(description, ''), type,
	COALESCE(content, ''), COALESCE(media_url, ''), COALESCE(thumbnail_url, ''),
	tags, is_published, is_broadcast, published_at, view_count,
	COALESCE(created_by, ''), is_active, created_at, updated_at`

func scanMedia(row rowScanner) (*models.Media, error) {
	var m models.Media
	var tags []byte
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Type,
		&m.Content, &m.MediaURL, &m.ThumbnailURL,
		&tags, &m.IsPublished, &m.IsBroadcast, &m.PublishedAt, &m.ViewCount,
		&m.CreatedBy, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(tags, &m.Tags); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMedia inserts a media item. PublishedAt is stamped immediately
// when the item is created already published.
func (s *Storage) CreateMedia(ctx context.Context, m models.Media) (string, error) {
	const op = "storage.CreateMedia"

	tags, err := marshalJSON(m.Tags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO media (title, description, type, content, media_url,
			thumbnail_url, tags, is_published, is_broadcast,
			published_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			CASE WHEN $8 THEN now() END, $10)
		RETURNING id`,
		m.Title, m.Description, m.Type, m.Content, m.MediaURL,
		m.ThumbnailURL, tags, m.IsPublished, m.IsBroadcast, m.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateMedia overwrites the editable fields of an item. PublishedAt is
// stamped the first time the item transitions to published and kept on
// later edits.
func (s *Storage) UpdateMedia(ctx context.Context, m models.Media) (*models.Media, error) {
	const op = "storage.UpdateMedia"

	tags, err := marshalJSON(m.Tags)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := s.DB.QueryRowContext(ctx, `
		UPDATE media
		SET title = $2, description = $3, type = $4, content = $5,
			media_url = $6, thumbnail_url = $7, tags = $8,
			is_published = $9, is_broadcast = $10,
			published_at = CASE WHEN $9 AND published_at IS NULL THEN now()
				ELSE published_at END,
			updated_at = now()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+mediaColumns,
		m.ID, m.Title, m.Description, m.Type, m.Content,
		m.MediaURL, m.ThumbnailURL, tags,
		m.IsPublished, m.IsBroadcast,
	)
	updated, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// SoftDeleteMedia hides an item without removing the row.
func (s *Storage) SoftDeleteMedia(ctx context.Context, id string) error {
	const op = "storage.SoftDeleteMedia"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE media SET is_active = FALSE, updated_at = now()
		WHERE id = $1 AND is_active = TRUE`, id)
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

// GetPublishedMedia returns a published item and bumps its view counter
// in the same statement.
func (s *Storage) GetPublishedMedia(ctx context.Context, id string) (*models.Media, error) {
	const op = "storage.GetPublishedMedia"

	row := s.DB.QueryRowContext(ctx, `
		UPDATE media SET view_count = view_count + 1
		WHERE id = $1 AND is_published = TRUE AND is_active = TRUE
		RETURNING `+mediaColumns, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListPublishedMedia returns a page of the public library, optionally
// filtered by type and tag, newest publications first.
func (s *Storage) ListPublishedMedia(ctx context.Context, mediaType, tag string, limit, offset int) ([]models.Media, int, error) {
	const op = "storage.ListPublishedMedia"

	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT count(*) FROM media
		WHERE is_published = TRUE AND is_active = TRUE
			AND ($1 = '' OR type = $1)
			AND ($2 = '' OR tags ? $2)`, mediaType, tag,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE is_published = TRUE AND is_active = TRUE
			AND ($1 = '' OR type = $1)
			AND ($2 = '' OR tags ? $2)
		ORDER BY published_at DESC NULLS LAST
		LIMIT $3 OFFSET $4`, mediaType, tag, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items, err := collectMedia(op, rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListBroadcastUpdates returns the latest published broadcast items for
// the public ticker.
func (s *Storage) ListBroadcastUpdates(ctx context.Context, limit int) ([]models.Media, error) {
	const op = "storage.ListBroadcastUpdates"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE is_published = TRUE AND is_active = TRUE AND is_broadcast = TRUE
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectMedia(op, rows)
}

// GetMediaByID returns any active item regardless of publication state,
// for the backoffice.
func (s *Storage) GetMediaByID(ctx context.Context, id string) (*models.Media, error) {
	const op = "storage.GetMediaByID"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = $1 AND is_active = TRUE`, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListAdminMedia returns a page of active items for the backoffice,
// optionally narrowed to drafts or published ones.
func (s *Storage) ListAdminMedia(ctx context.Context, mediaType string, published *bool, limit, offset int) ([]models.Media, int, error) {
	const op = "storage.ListAdminMedia"

	pub := sql.NullBool{}
	if published != nil {
		pub = sql.NullBool{Bool: *published, Valid: true}
	}

	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT count(*) FROM media
		WHERE is_active = TRUE
			AND ($1 = '' OR type = $1)
			AND ($2::boolean IS NULL OR is_published = $2)`, mediaType, pub,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE is_active = TRUE
			AND ($1 = '' OR type = $1)
			AND ($2::boolean IS NULL OR is_published = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, mediaType, pub, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items, err := collectMedia(op, rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectMedia(op string, rows *sql.Rows) ([]models.Media, error) {
	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
