package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/event-gallery-api/internal/drive"
	"github.com/event-gallery-api/internal/ingest"
	"github.com/event-gallery-api/internal/metrics"
	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ingestionService is the concrete implementation of IngestionService
type ingestionService struct {
	repos      *repository.Repositories
	adapter    *ingest.Adapter
	lister     drive.Lister
	moderation ModerationService
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// newIngestionService creates a new IngestionService
func newIngestionService(repos *repository.Repositories, adapter *ingest.Adapter, lister drive.Lister, moderation ModerationService, m *metrics.Metrics, log zerolog.Logger) *ingestionService {
	return &ingestionService{
		repos:      repos,
		adapter:    adapter,
		lister:     lister,
		moderation: moderation,
		metrics:    m,
		log:        log.With().Str("service", "ingestion").Logger(),
	}
}

// PreviewFolder lists and maps a folder without writing anything
func (s *ingestionService) PreviewFolder(ctx context.Context, eventID, folderID string) (*models.IngestResult, error) {
	res, err := s.sync(ctx, eventID, folderID)
	if err != nil {
		return nil, err
	}
	return &models.IngestResult{
		EventID:       eventID,
		FolderID:      folderID,
		Media:         res.Candidates,
		Skipped:       res.Skipped,
		NextPageToken: res.NextPageToken,
	}, nil
}

// ImportFolder syncs a folder and bulk inserts every candidate in one
// transaction
func (s *ingestionService) ImportFolder(ctx context.Context, eventID, folderID string) (*models.IngestResult, error) {
	res, err := s.sync(ctx, eventID, folderID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repos.Media.BatchInsert(ctx, res.Candidates)
	if err != nil {
		return nil, storeErr("insert media", err)
	}
	s.metrics.FilesIngested(inserted, len(res.Skipped))

	s.log.Info().
		Str("event_id", eventID).
		Str("folder_id", folderID).
		Int("imported", inserted).
		Int("skipped", len(res.Skipped)).
		Msg("Folder imported")

	return &models.IngestResult{
		EventID:       eventID,
		FolderID:      folderID,
		Media:         res.Candidates,
		Skipped:       res.Skipped,
		Committed:     true,
		NextPageToken: res.NextPageToken,
	}, nil
}

// CreateEventFromFolder creates a draft event named after the folder (unless
// a title is given) and imports the folder into it. If the import fails the
// draft is kept so the admin can retry the ingest.
func (s *ingestionService) CreateEventFromFolder(ctx context.Context, req *models.FolderEventRequest) (*models.Event, *models.IngestResult, error) {
	folderID := strings.TrimSpace(req.FolderID)
	if folderID == "" {
		return nil, nil, models.NewValidationError("folder_id", "folder_id is required", nil)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		name, err := s.lister.FolderName(ctx, folderID)
		if err != nil {
			return nil, nil, err
		}
		title = name
	}

	event, err := s.moderation.CreateEvent(ctx, &models.EventInput{
		Title:  title,
		Date:   req.Date,
		Status: string(models.EventStatusDraft),
	})
	if err != nil {
		return nil, nil, err
	}

	result, err := s.ImportFolder(ctx, event.ID, folderID)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", event.ID).Msg("Folder import failed, event kept as draft")
		return event, nil, fmt.Errorf("import into event %s: %w", event.ID, err)
	}
	return event, result, nil
}

// CreateImportJob queues a folder import. A repeated idempotency key
// returns the existing job and true.
func (s *ingestionService) CreateImportJob(ctx context.Context, req *models.IngestRequest) (*models.IngestJob, bool, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.repos.Job.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, false, storeErr("get job by idempotency key", err)
		}
		if existing != nil {
			s.log.Info().Str("job_id", existing.ID).Msg("Returning existing job for idempotency key")
			return existing, true, nil
		}
	}

	folderID := strings.TrimSpace(req.FolderID)
	if folderID == "" {
		return nil, false, models.NewValidationError("folder_id", "folder_id is required", nil)
	}
	if err := s.requireEvent(ctx, req.EventID); err != nil {
		return nil, false, err
	}

	job := &models.IngestJob{
		ID:             uuid.NewString(),
		EventID:        req.EventID,
		FolderID:       folderID,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, false, storeErr("create job", err)
	}

	s.log.Info().Str("job_id", job.ID).Str("event_id", job.EventID).Msg("Ingest job queued")
	return job, false, nil
}

// ProcessJob runs a claimed job to completion and records its outcome
func (s *ingestionService) ProcessJob(ctx context.Context, job *models.IngestJob) error {
	start := time.Now()
	if job.StartedAt == nil {
		job.StartedAt = &start
	}

	// outcome is recorded even when shutdown cancels the import
	recordCtx := context.WithoutCancel(ctx)

	result, err := s.ImportFolder(ctx, job.EventID, job.FolderID)
	completed := time.Now()
	job.CompletedAt = &completed
	job.DurationMs = completed.Sub(start).Milliseconds()

	if err != nil {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = err.Error()
		if uerr := s.repos.Job.Update(recordCtx, job); uerr != nil {
			s.log.Error().Err(uerr).Str("job_id", job.ID).Msg("Failed to record job failure")
		}
		s.metrics.JobFinished(string(job.Status))
		return err
	}

	job.Status = models.JobStatusCompleted
	job.ImportedCount = len(result.Media)
	job.SkippedCount = len(result.Skipped)
	job.TotalFiles = job.ImportedCount + job.SkippedCount

	if err := s.repos.Job.AddSkips(recordCtx, job.ID, result.Skipped); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record skipped files")
	}
	if err := s.repos.Job.Update(recordCtx, job); err != nil {
		return storeErr("update job", err)
	}
	s.metrics.JobFinished(string(job.Status))

	s.log.Info().
		Str("job_id", job.ID).
		Int("imported", job.ImportedCount).
		Int("skipped", job.SkippedCount).
		Int64("duration_ms", job.DurationMs).
		Msg("Ingest job completed")
	return nil
}

func (s *ingestionService) sync(ctx context.Context, eventID, folderID string) (*ingest.Result, error) {
	if strings.TrimSpace(folderID) == "" {
		return nil, models.NewValidationError("folder_id", "folder_id is required", nil)
	}
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.adapter.Sync(ctx, eventID, folderID)
}

func (s *ingestionService) requireEvent(ctx context.Context, eventID string) error {
	if err := lookupID("event", eventID); err != nil {
		return err
	}
	exists, err := s.repos.Event.Exists(ctx, eventID)
	if err != nil {
		return storeErr("check event", err)
	}
	if !exists {
		return notFound("event", eventID)
	}
	return nil
}
