package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/service"
)

// MockIngestionService is a mock implementation of IngestionService
type MockIngestionService struct {
	mu             sync.Mutex
	PreviewFunc    func(ctx context.Context, eventID, folderID string) (*models.IngestResult, error)
	ImportFunc     func(ctx context.Context, eventID, folderID string) (*models.IngestResult, error)
	FromFolderFunc func(ctx context.Context, req *models.FolderEventRequest) (*models.Event, *models.IngestResult, error)
	CreatedJobs    []*models.IngestJob
	ProcessedJobs  []*models.IngestJob
}

// Verify interface compliance
var _ service.IngestionService = (*MockIngestionService)(nil)

func NewMockIngestionService() *MockIngestionService {
	return &MockIngestionService{
		CreatedJobs:   make([]*models.IngestJob, 0),
		ProcessedJobs: make([]*models.IngestJob, 0),
	}
}

func (m *MockIngestionService) PreviewFolder(ctx context.Context, eventID, folderID string) (*models.IngestResult, error) {
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx, eventID, folderID)
	}
	return &models.IngestResult{EventID: eventID, FolderID: folderID, Media: []*models.Media{}, Skipped: []models.SkippedFile{}}, nil
}

func (m *MockIngestionService) ImportFolder(ctx context.Context, eventID, folderID string) (*models.IngestResult, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, eventID, folderID)
	}
	return &models.IngestResult{EventID: eventID, FolderID: folderID, Media: []*models.Media{}, Skipped: []models.SkippedFile{}, Committed: true}, nil
}

func (m *MockIngestionService) CreateEventFromFolder(ctx context.Context, req *models.FolderEventRequest) (*models.Event, *models.IngestResult, error) {
	if m.FromFolderFunc != nil {
		return m.FromFolderFunc(ctx, req)
	}
	return nil, nil, fmt.Errorf("%w: folder %s", models.ErrNotFound, req.FolderID)
}

// CreateImportJob returns an existing job when the idempotency key was seen
func (m *MockIngestionService) CreateImportJob(ctx context.Context, req *models.IngestRequest) (*models.IngestJob, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.IdempotencyKey != "" {
		for _, j := range m.CreatedJobs {
			if j.IdempotencyKey == req.IdempotencyKey {
				return j, true, nil
			}
		}
	}

	job := &models.IngestJob{
		ID:             fmt.Sprintf("test-job-%d", len(m.CreatedJobs)+1),
		EventID:        req.EventID,
		FolderID:       req.FolderID,
		IdempotencyKey: req.IdempotencyKey,
		Status:         models.JobStatusPending,
	}
	m.CreatedJobs = append(m.CreatedJobs, job)
	return job, false, nil
}

func (m *MockIngestionService) ProcessJob(ctx context.Context, job *models.IngestJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	job.Status = models.JobStatusCompleted
	return nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs  map[string]*models.JobResponse
	Skips map[string][]models.SkippedFile
}

// Verify interface compliance
var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:  make(map[string]*models.JobResponse),
		Skips: make(map[string][]models.SkippedFile),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) {}

func (m *MockJobService) StopProcessor() {}

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, ok := m.Jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", models.ErrNotFound, id)
	}
	return job, nil
}

func (m *MockJobService) GetJobSkips(ctx context.Context, id string) ([]models.SkippedFile, error) {
	if _, ok := m.Jobs[id]; !ok {
		return nil, fmt.Errorf("%w: job %s", models.ErrNotFound, id)
	}
	skips := m.Skips[id]
	if skips == nil {
		skips = []models.SkippedFile{}
	}
	return skips, nil
}

func (m *MockJobService) SetIngestionService(ingestionService service.IngestionService) {}
