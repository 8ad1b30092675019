package repository

import (
	"context"
	"database/sql"

	"github.com/event-gallery-api/internal/database"
	"github.com/event-gallery-api/internal/models"
)

const blessingColumns = `b.id, b.event_id, e.title, b.author_name, b.author_relation, b.text,
	b.media_url, b.status, b.submitted_at`

// blessingRepo is the concrete implementation of BlessingRepository
type blessingRepo struct {
	db *database.DB
}

// NewBlessingRepo creates a new blessing repository
func NewBlessingRepo(db *database.DB) BlessingRepository {
	return &blessingRepo{db: db}
}

// Create inserts a new blessing
func (r *blessingRepo) Create(ctx context.Context, blessing *models.Blessing) error {
	query := `
		INSERT INTO blessings (id, event_id, author_name, author_relation, text, media_url, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		blessing.ID, blessing.EventID, blessing.AuthorName, nullString(blessing.AuthorRelation),
		blessing.Text, nullString(blessing.MediaURL), blessing.Status, blessing.SubmittedAt,
	)
	return err
}

// SetStatus records a moderation decision and returns the updated row
func (r *blessingRepo) SetStatus(ctx context.Context, id string, status models.BlessingStatus) (*models.Blessing, error) {
	query := `
		UPDATE blessings b SET status = $1
		FROM events e
		WHERE b.id = $2 AND e.id = b.event_id
		RETURNING ` + blessingColumns
	return scanBlessingRow(r.db.QueryRowContext(ctx, query, status, id))
}

// GetByID retrieves a blessing by ID
func (r *blessingRepo) GetByID(ctx context.Context, id string) (*models.Blessing, error) {
	query := `SELECT ` + blessingColumns + ` FROM blessings b JOIN events e ON e.id = b.event_id WHERE b.id = $1`
	return scanBlessingRow(r.db.QueryRowContext(ctx, query, id))
}

// List returns all blessings, optionally for one event, newest first
func (r *blessingRepo) List(ctx context.Context, eventID string) ([]*models.Blessing, error) {
	if eventID == "" {
		return r.query(ctx, `SELECT `+blessingColumns+` FROM blessings b
			JOIN events e ON e.id = b.event_id
			ORDER BY b.submitted_at DESC`)
	}
	return r.query(ctx, `SELECT `+blessingColumns+` FROM blessings b
		JOIN events e ON e.id = b.event_id
		WHERE b.event_id = $1
		ORDER BY b.submitted_at DESC`, eventID)
}

// ListApproved returns approved blessings of a published event, newest first
func (r *blessingRepo) ListApproved(ctx context.Context, eventID string) ([]*models.Blessing, error) {
	query := `
		SELECT ` + blessingColumns + `
		FROM blessings b
		JOIN events e ON e.id = b.event_id
		WHERE b.event_id = $1 AND b.status = 'approved' AND e.status = 'published'
		ORDER BY b.submitted_at DESC
	`
	return r.query(ctx, query, eventID)
}

// Recent returns the newest approved blessings across published events
func (r *blessingRepo) Recent(ctx context.Context, limit int) ([]*models.Blessing, error) {
	query := `
		SELECT ` + blessingColumns + `
		FROM blessings b
		JOIN events e ON e.id = b.event_id
		WHERE b.status = 'approved' AND e.status = 'published'
		ORDER BY b.submitted_at DESC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

// Delete removes a blessing
func (r *blessingRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM blessings WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return deleted(result)
}

// CountByStatus returns the number of blessings per status
func (r *blessingRepo) CountByStatus(ctx context.Context) (map[models.BlessingStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM blessings GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.BlessingStatus]int{
		models.BlessingStatusPending:  0,
		models.BlessingStatusApproved: 0,
		models.BlessingStatusRejected: 0,
	}
	for rows.Next() {
		var status models.BlessingStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// StreamByEvent streams every blessing of an event for export, oldest first
func (r *blessingRepo) StreamByEvent(ctx context.Context, eventID string, callback func(*models.Blessing) error) error {
	query := `
		SELECT ` + blessingColumns + `
		FROM blessings b
		JOIN events e ON e.id = b.event_id
		WHERE b.event_id = $1
		ORDER BY b.submitted_at
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBlessing(rows)
		if err != nil {
			return err
		}
		if err := callback(b); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *blessingRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Blessing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blessings := []*models.Blessing{}
	for rows.Next() {
		b, err := scanBlessing(rows)
		if err != nil {
			return nil, err
		}
		blessings = append(blessings, b)
	}
	return blessings, rows.Err()
}

func scanBlessingRow(row *sql.Row) (*models.Blessing, error) {
	b, err := scanBlessing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func scanBlessing(s rowScanner) (*models.Blessing, error) {
	var b models.Blessing
	var relation, mediaURL sql.NullString

	err := s.Scan(
		&b.ID, &b.EventID, &b.EventTitle, &b.AuthorName, &relation, &b.Text,
		&mediaURL, &b.Status, &b.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	b.AuthorRelation = relation.String
	b.MediaURL = mediaURL.String

	if !b.Status.Valid() {
		return nil, models.NewValidationError("status", "unknown blessing status in store", string(b.Status))
	}
	if b.AuthorName == "" || b.Text == "" {
		return nil, models.NewValidationError("author_name", "stored blessing is missing author or text", b.ID)
	}
	return &b, nil
}
