package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/event-gallery-api/internal/database"
	"github.com/event-gallery-api/internal/models"
)

const eventColumns = `id, title, date, location, cover_image_url, description_short,
	description_full, status, created_at, updated_at`

// eventRepo is the concrete implementation of EventRepository
type eventRepo struct {
	db *database.DB
}

// NewEventRepo creates a new event repository
func NewEventRepo(db *database.DB) EventRepository {
	return &eventRepo{db: db}
}

// Create inserts a new event
func (r *eventRepo) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, title, date, location, cover_image_url, description_short,
			description_full, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Title, event.Date, nullString(event.Location),
		nullString(event.CoverImageURL), nullString(event.DescriptionShort),
		nullString(event.DescriptionFull), event.Status, event.CreatedAt, event.UpdatedAt,
	)
	return err
}

// Update overwrites the editable fields and returns the stored row
func (r *eventRepo) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		UPDATE events SET
			title = $1, date = $2, location = $3, cover_image_url = $4,
			description_short = $5, description_full = $6, status = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + eventColumns

	row := r.db.QueryRowContext(ctx, query,
		event.Title, event.Date, nullString(event.Location), nullString(event.CoverImageURL),
		nullString(event.DescriptionShort), nullString(event.DescriptionFull),
		event.Status, time.Now().UTC(), event.ID,
	)
	return scanEventRow(row)
}

// SetStatus writes the publication status in a single statement
func (r *eventRepo) SetStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	query := `UPDATE events SET status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + eventColumns
	row := r.db.QueryRowContext(ctx, query, status, time.Now().UTC(), id)
	return scanEventRow(row)
}

// GetByID retrieves an event by ID
func (r *eventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEventRow(r.db.QueryRowContext(ctx, query, id))
}

// Exists checks if an event with the given ID exists
func (r *eventRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// List returns every event, newest date first
func (r *eventRepo) List(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC, created_at DESC`
	return r.query(ctx, query)
}

// ListByStatus returns events in the given status, newest date first
func (r *eventRepo) ListByStatus(ctx context.Context, status models.EventStatus) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = $1 ORDER BY date DESC, created_at DESC`
	return r.query(ctx, query, status)
}

// Delete removes an event. Media and blessings go with it through the FK cascade.
func (r *eventRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return deleted(result)
}

// CountByStatus returns the number of events per status
func (r *eventRepo) CountByStatus(ctx context.Context) (map[models.EventStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM events GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.EventStatus]int{
		models.EventStatusDraft:     0,
		models.EventStatusPublished: 0,
	}
	for rows.Next() {
		var status models.EventStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *eventRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEventRow(row *sql.Row) (*models.Event, error) {
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func scanEvent(s rowScanner) (*models.Event, error) {
	var event models.Event
	var location, cover, short, full sql.NullString

	err := s.Scan(
		&event.ID, &event.Title, &event.Date, &location, &cover, &short,
		&full, &event.Status, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Location = location.String
	event.CoverImageURL = cover.String
	event.DescriptionShort = short.String
	event.DescriptionFull = full.String

	if !event.Status.Valid() {
		return nil, models.NewValidationError("status", "unknown event status in store", string(event.Status))
	}
	if event.Title == "" {
		return nil, models.NewValidationError("title", "stored event has no title", event.ID)
	}
	return &event, nil
}
