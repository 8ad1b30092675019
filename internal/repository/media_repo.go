package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/event-gallery-api/internal/database"
	"github.com/event-gallery-api/internal/models"
	"github.com/lib/pq"
)

const mediaColumns = `id, event_id, type, file_url, thumbnail_url, title, caption, tags, visible, created_at`

// mediaRepo is the concrete implementation of MediaRepository
type mediaRepo struct {
	db *database.DB
}

// NewMediaRepo creates a new media repository
func NewMediaRepo(db *database.DB) MediaRepository {
	return &mediaRepo{db: db}
}

// Create inserts a new media item
func (r *mediaRepo) Create(ctx context.Context, media *models.Media) error {
	query := `
		INSERT INTO media (id, event_id, type, file_url, thumbnail_url, title, caption, tags, visible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		media.ID, media.EventID, media.Type, media.FileURL, nullString(media.ThumbnailURL),
		nullString(media.Title), nullString(media.Caption), pq.Array(tagsOrEmpty(media.Tags)),
		media.Visible, media.CreatedAt,
	)
	return err
}

// BatchInsert inserts multiple media items using PostgreSQL COPY. Either
// every row lands or none does.
func (r *mediaRepo) BatchInsert(ctx context.Context, items []*models.Media) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("media",
		"id", "event_id", "type", "file_url", "thumbnail_url", "title", "caption", "tags", "visible", "created_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, m := range items {
		_, err := stmt.ExecContext(ctx,
			m.ID, m.EventID, string(m.Type), m.FileURL, nullString(m.ThumbnailURL),
			nullString(m.Title), nullString(m.Caption), pq.Array(tagsOrEmpty(m.Tags)),
			m.Visible, m.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("copy row %d: %w", i, err)
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(items), nil
}

// Update overwrites the editable fields and returns the stored row
func (r *mediaRepo) Update(ctx context.Context, media *models.Media) (*models.Media, error) {
	query := `
		UPDATE media SET
			event_id = $1, type = $2, file_url = $3, thumbnail_url = $4,
			title = $5, caption = $6, tags = $7, visible = $8
		WHERE id = $9
		RETURNING ` + mediaColumns

	row := r.db.QueryRowContext(ctx, query,
		media.EventID, media.Type, media.FileURL, nullString(media.ThumbnailURL),
		nullString(media.Title), nullString(media.Caption), pq.Array(tagsOrEmpty(media.Tags)),
		media.Visible, media.ID,
	)
	return scanMediaRow(row)
}

// ToggleVisibility flips the visible flag in one statement so concurrent
// toggles never read a stale value
func (r *mediaRepo) ToggleVisibility(ctx context.Context, id string) (*models.Media, error) {
	query := `UPDATE media SET visible = NOT visible WHERE id = $1 RETURNING ` + mediaColumns
	return scanMediaRow(r.db.QueryRowContext(ctx, query, id))
}

// GetByID retrieves a media item by ID
func (r *mediaRepo) GetByID(ctx context.Context, id string) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`
	return scanMediaRow(r.db.QueryRowContext(ctx, query, id))
}

// List returns all media, optionally for one event, newest first
func (r *mediaRepo) List(ctx context.Context, eventID string) ([]*models.Media, error) {
	if eventID == "" {
		return r.query(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC`)
	}
	return r.query(ctx, `SELECT `+mediaColumns+` FROM media WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
}

// ListPublic returns visible images of a published event, newest first
func (r *mediaRepo) ListPublic(ctx context.Context, eventID string) ([]*models.Media, error) {
	query := `
		SELECT m.id, m.event_id, m.type, m.file_url, m.thumbnail_url, m.title, m.caption,
			m.tags, m.visible, m.created_at
		FROM media m
		JOIN events e ON e.id = m.event_id
		WHERE m.event_id = $1 AND m.visible AND m.type = 'image' AND e.status = 'published'
		ORDER BY m.created_at DESC
	`
	return r.query(ctx, query, eventID)
}

// Delete removes a media item
func (r *mediaRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM media WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return deleted(result)
}

// Count returns the total number of media items
func (r *mediaRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media").Scan(&count)
	return count, err
}

func (r *mediaRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Media, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func scanMediaRow(row *sql.Row) (*models.Media, error) {
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func scanMedia(s rowScanner) (*models.Media, error) {
	var m models.Media
	var thumbnail, title, caption sql.NullString
	var tags pq.StringArray

	err := s.Scan(
		&m.ID, &m.EventID, &m.Type, &m.FileURL, &thumbnail, &title, &caption,
		&tags, &m.Visible, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.ThumbnailURL = thumbnail.String
	m.Title = title.String
	m.Caption = caption.String
	m.Tags = tagsOrEmpty(tags)

	if !m.Type.Valid() {
		return nil, models.NewValidationError("type", "unknown media type in store", string(m.Type))
	}
	if m.FileURL == "" {
		return nil, models.NewValidationError("file_url", "stored media has no file url", m.ID)
	}
	return &m, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
