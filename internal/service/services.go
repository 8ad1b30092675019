package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/event-gallery-api/internal/config"
	"github.com/event-gallery-api/internal/drive"
	"github.com/event-gallery-api/internal/ingest"
	"github.com/event-gallery-api/internal/metrics"
	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/moderation"
	"github.com/event-gallery-api/internal/repository"
	"github.com/event-gallery-api/internal/validation"
	"github.com/rs/zerolog"
)

// ModerationService owns every mutation of events, media and blessings.
// Each call returns the entity as stored after the change.
type ModerationService interface {
	CreateEvent(ctx context.Context, in *models.EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, in *models.EventInput) (*models.Event, error)
	SetEventStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	CreateMedia(ctx context.Context, in *models.MediaInput) (*models.Media, error)
	UpdateMedia(ctx context.Context, id string, in *models.MediaInput) (*models.Media, error)
	ToggleMediaVisibility(ctx context.Context, id string) (*models.Media, error)
	DeleteMedia(ctx context.Context, id string) error

	SubmitBlessing(ctx context.Context, eventID string, in *models.BlessingSubmission) (*models.Blessing, error)
	SetBlessingStatus(ctx context.Context, id string, status models.BlessingStatus) (*models.Blessing, error)
	DeleteBlessing(ctx context.Context, id string) error
}

// QueryService serves the public and admin read projections
type QueryService interface {
	ListPublishedEvents(ctx context.Context) ([]*models.Event, error)
	GetPublishedEvent(ctx context.Context, id string) (*models.Event, error)
	ListPublicMedia(ctx context.Context, eventID string) ([]*models.Media, error)
	ListApprovedBlessings(ctx context.Context, eventID, search string) ([]*models.Blessing, error)
	RecentBlessings(ctx context.Context, limit int) ([]*models.Blessing, error)

	AdminEvents(ctx context.Context) (*models.EventBuckets, error)
	AdminMedia(ctx context.Context, eventID string) (*models.MediaBuckets, error)
	AdminBlessings(ctx context.Context, eventID string) (*models.BlessingBuckets, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// IngestionService imports external folders into an event's gallery
type IngestionService interface {
	PreviewFolder(ctx context.Context, eventID, folderID string) (*models.IngestResult, error)
	ImportFolder(ctx context.Context, eventID, folderID string) (*models.IngestResult, error)
	CreateEventFromFolder(ctx context.Context, req *models.FolderEventRequest) (*models.Event, *models.IngestResult, error)
	CreateImportJob(ctx context.Context, req *models.IngestRequest) (*models.IngestJob, bool, error)
	ProcessJob(ctx context.Context, job *models.IngestJob) error
}

// JobService defines the interface for job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobSkips(ctx context.Context, id string) ([]models.SkippedFile, error)
	SetIngestionService(ingestionService IngestionService)
}

// ExportService streams an event's guestbook
type ExportService interface {
	StreamBlessings(ctx context.Context, w http.ResponseWriter, eventID, format string) error
}

// Services holds all service interfaces
type Services struct {
	Moderation ModerationService
	Query      QueryService
	Ingestion  IngestionService
	Job        JobService
	Export     ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, lister drive.Lister, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*Services, error) {
	policy, err := moderation.PolicyFor(cfg.Moderation.BlessingPolicy)
	if err != nil {
		return nil, err
	}

	v := validation.NewValidator()
	adapter := ingest.NewAdapter(lister, cfg.Ingest, v, log)

	moderationSvc := newModerationService(repos, v, policy, m, log)
	jobSvc := newJobService(repos.Job, cfg.Ingest.Workers, log)
	ingestionSvc := newIngestionService(repos, adapter, lister, moderationSvc, m, log)
	querySvc := newQueryService(repos, log)
	exportSvc := newExportService(repos, log)

	// Wire up job processor to ingestion service
	jobSvc.SetIngestionService(ingestionSvc)

	return &Services{
		Moderation: moderationSvc,
		Query:      querySvc,
		Ingestion:  ingestionSvc,
		Job:        jobSvc,
		Export:     exportSvc,
	}, nil
}

// storeErr tags a repository failure. Row-shape failures keep their
// validation kind.
func storeErr(op string, err error) error {
	if errors.Is(err, models.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStore, err)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
}

// lookupID rejects ids that cannot name a row. A malformed id is reported
// as not found.
func lookupID(kind, id string) error {
	if !validation.IsValidID(id) {
		return notFound(kind, id)
	}
	return nil
}
