package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	pollInterval    = 2 * time.Second
	skipPreviewSize = 100
)

// jobService is the concrete implementation of JobService
type jobService struct {
	jobRepo          repository.JobRepository
	ingestionService IngestionService
	log              zerolog.Logger
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	running          bool
	mu               sync.Mutex
	// semaphore bounding concurrent imports
	sem chan struct{}
}

// newJobService creates a JobService. Imports spend their time waiting on
// the provider and the database, so without an explicit size the pool is
// a multiple of the CPU count.
func newJobService(jobRepo repository.JobRepository, workers int, log zerolog.Logger) *jobService {
	if workers <= 0 {
		workers = runtime.NumCPU() * 4
		if workers > 32 {
			workers = 32
		}
	}

	log.Info().Int("max_workers", workers).Msg("Initializing ingest worker pool")

	return &jobService{
		jobRepo: jobRepo,
		log:     log.With().Str("service", "job").Logger(),
		sem:     make(chan struct{}, workers),
	}
}

// SetIngestionService sets the service that runs claimed jobs
func (s *jobService) SetIngestionService(ingestionService IngestionService) {
	s.ingestionService = ingestionService
}

// StartProcessor polls for pending jobs until ctx is cancelled or
// StopProcessor is called. It blocks; run it in its own goroutine.
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processPendingJobs(runCtx)
		}
	}
}

// StopProcessor cancels the processor and waits for running jobs
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// processPendingJobs claims and starts every pending job the pool has room for
func (s *jobService) processPendingJobs(ctx context.Context) {
	jobs, err := s.jobRepo.GetPendingJobs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return
	}

	for _, job := range jobs {
		// blocks while all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		// Claim atomically; another instance may have taken it
		claimed, err := s.jobRepo.MarkJobAsProcessing(ctx, job.ID)
		if err != nil || !claimed {
			<-s.sem
			continue
		}

		s.wg.Add(1)
		go func(j *models.IngestJob) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					j.Status = models.JobStatusFailed
					j.ErrorMessage = "internal error"
					s.jobRepo.Update(context.Background(), j)
				}
			}()
			s.processJob(ctx, j)
		}(job)
	}
}

// processJob runs a single claimed job
func (s *jobService) processJob(ctx context.Context, job *models.IngestJob) {
	select {
	case <-ctx.Done():
		s.log.Warn().Str("job_id", job.ID).Msg("Job processing cancelled due to shutdown")
		return
	default:
	}

	s.log.Info().Str("job_id", job.ID).Str("folder_id", job.FolderID).Msg("Processing job")

	if s.ingestionService == nil {
		s.log.Error().Str("job_id", job.ID).Msg("No ingestion service configured")
		return
	}
	if err := s.ingestionService.ProcessJob(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Ingest job failed")
	}
}

// GetJob retrieves a job with the first skipped files
func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}

	skips, err := s.jobRepo.GetSkips(ctx, id, skipPreviewSize)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get skipped files")
	}

	response := &models.JobResponse{
		IngestJob: *job,
		Skipped:   skips,
	}
	if job.SkippedCount > 0 {
		response.SkippedReport = "/v1/admin/imports/" + job.ID + "/skipped"
	}

	return response, nil
}

// GetJobSkips retrieves every skipped file of a job
func (s *jobService) GetJobSkips(ctx context.Context, id string) ([]models.SkippedFile, error) {
	if _, err := s.getJob(ctx, id); err != nil {
		return nil, err
	}
	skips, err := s.jobRepo.GetSkips(ctx, id, 0)
	if err != nil {
		return nil, storeErr("get skipped files", err)
	}
	if skips == nil {
		skips = []models.SkippedFile{}
	}
	return skips, nil
}

func (s *jobService) getJob(ctx context.Context, id string) (*models.IngestJob, error) {
	if err := lookupID("job", id); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get job", err)
	}
	if job == nil {
		return nil, notFound("job", id)
	}
	return job, nil
}
