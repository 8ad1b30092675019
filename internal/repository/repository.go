package repository

import (
	"context"
	"database/sql"

	"github.com/event-gallery-api/internal/database"
	"github.com/event-gallery-api/internal/models"
)

// Lookups return (nil, nil) when no row matches. Deletes report whether a
// row was removed.

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	SetStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*models.Event, error)
	ListByStatus(ctx context.Context, status models.EventStatus) ([]*models.Event, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context) (map[models.EventStatus]int, error)
}

// MediaRepository defines the interface for media data operations
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	BatchInsert(ctx context.Context, items []*models.Media) (int, error)
	Update(ctx context.Context, media *models.Media) (*models.Media, error)
	ToggleVisibility(ctx context.Context, id string) (*models.Media, error)
	GetByID(ctx context.Context, id string) (*models.Media, error)
	List(ctx context.Context, eventID string) ([]*models.Media, error)
	ListPublic(ctx context.Context, eventID string) ([]*models.Media, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// BlessingRepository defines the interface for guestbook data operations
type BlessingRepository interface {
	Create(ctx context.Context, blessing *models.Blessing) error
	SetStatus(ctx context.Context, id string, status models.BlessingStatus) (*models.Blessing, error)
	GetByID(ctx context.Context, id string) (*models.Blessing, error)
	List(ctx context.Context, eventID string) ([]*models.Blessing, error)
	ListApproved(ctx context.Context, eventID string) ([]*models.Blessing, error)
	Recent(ctx context.Context, limit int) ([]*models.Blessing, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context) (map[models.BlessingStatus]int, error)
	StreamByEvent(ctx context.Context, eventID string, callback func(*models.Blessing) error) error
}

// JobRepository defines the interface for ingest job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.IngestJob) error
	Update(ctx context.Context, job *models.IngestJob) error
	GetByID(ctx context.Context, id string) (*models.IngestJob, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.IngestJob, error)
	GetPendingJobs(ctx context.Context) ([]*models.IngestJob, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddSkips(ctx context.Context, jobID string, skips []models.SkippedFile) error
	GetSkips(ctx context.Context, jobID string, limit int) ([]models.SkippedFile, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Event    EventRepository
	Media    MediaRepository
	Blessing BlessingRepository
	Job      JobRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Event:    NewEventRepo(db),
		Media:    NewMediaRepo(db),
		Blessing: NewBlessingRepo(db),
		Job:      NewJobRepo(db),
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func deleted(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
