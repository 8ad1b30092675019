package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/repository"
)

// Store is the in-memory content store shared by the mock repositories.
// Deleting an event removes its media and blessings like the FK cascade does.
type Store struct {
	mu        sync.Mutex
	Events    map[string]*models.Event
	Media     map[string]*models.Media
	Blessings map[string]*models.Blessing
}

func NewStore() *Store {
	return &Store{
		Events:    make(map[string]*models.Event),
		Media:     make(map[string]*models.Media),
		Blessings: make(map[string]*models.Blessing),
	}
}

// NewMockRepositories wires mock repositories over one shared store
func NewMockRepositories() (*repository.Repositories, *Store) {
	store := NewStore()
	return &repository.Repositories{
		Event:    NewMockEventRepository(store),
		Media:    NewMockMediaRepository(store),
		Blessing: NewMockBlessingRepository(store),
		Job:      NewMockJobRepository(),
	}, store
}

func copyEvent(e *models.Event) *models.Event {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

func copyMedia(m *models.Media) *models.Media {
	if m == nil {
		return nil
	}
	c := *m
	c.Tags = append([]string{}, m.Tags...)
	return &c
}

func copyBlessing(b *models.Blessing) *models.Blessing {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	store       *Store
	InsertError error
	QueryError  error
}

var _ repository.EventRepository = (*MockEventRepository)(nil)

func NewMockEventRepository(store *Store) *MockEventRepository {
	return &MockEventRepository{store: store}
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.Events[event.ID] = copyEvent(event)
	return nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	existing, ok := m.store.Events[event.ID]
	if !ok {
		return nil, nil
	}
	updated := copyEvent(event)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	m.store.Events[event.ID] = updated
	return copyEvent(updated), nil
}

func (m *MockEventRepository) SetStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	e, ok := m.store.Events[id]
	if !ok {
		return nil, nil
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return copyEvent(e), nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return copyEvent(m.store.Events[id]), nil
}

func (m *MockEventRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	_, ok := m.store.Events[id]
	return ok, nil
}

func (m *MockEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	return m.filter(func(*models.Event) bool { return true })
}

func (m *MockEventRepository) ListByStatus(ctx context.Context, status models.EventStatus) ([]*models.Event, error) {
	return m.filter(func(e *models.Event) bool { return e.Status == status })
}

func (m *MockEventRepository) filter(keep func(*models.Event) bool) ([]*models.Event, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	events := []*models.Event{}
	for _, e := range m.store.Events {
		if keep(e) {
			events = append(events, copyEvent(e))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date.Time) {
			return events[i].Date.After(events[j].Date.Time)
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.Events[id]; !ok {
		return false, nil
	}
	delete(m.store.Events, id)
	for mid, media := range m.store.Media {
		if media.EventID == id {
			delete(m.store.Media, mid)
		}
	}
	for bid, b := range m.store.Blessings {
		if b.EventID == id {
			delete(m.store.Blessings, bid)
		}
	}
	return true, nil
}

func (m *MockEventRepository) CountByStatus(ctx context.Context) (map[models.EventStatus]int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	counts := map[models.EventStatus]int{models.EventStatusDraft: 0, models.EventStatusPublished: 0}
	for _, e := range m.store.Events {
		counts[e.Status]++
	}
	return counts, nil
}

// MockMediaRepository is a mock implementation of MediaRepository
type MockMediaRepository struct {
	store            *Store
	InsertError      error
	BatchInsertCalls int
}

var _ repository.MediaRepository = (*MockMediaRepository)(nil)

func NewMockMediaRepository(store *Store) *MockMediaRepository {
	return &MockMediaRepository{store: store}
}

func (m *MockMediaRepository) Create(ctx context.Context, media *models.Media) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.Media[media.ID] = copyMedia(media)
	return nil
}

func (m *MockMediaRepository) BatchInsert(ctx context.Context, items []*models.Media) (int, error) {
	m.store.mu.Lock()
	m.BatchInsertCalls++
	m.store.mu.Unlock()
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, item := range items {
		if err := m.Create(ctx, item); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (m *MockMediaRepository) Update(ctx context.Context, media *models.Media) (*models.Media, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	existing, ok := m.store.Media[media.ID]
	if !ok {
		return nil, nil
	}
	updated := copyMedia(media)
	updated.CreatedAt = existing.CreatedAt
	m.store.Media[media.ID] = updated
	return copyMedia(updated), nil
}

func (m *MockMediaRepository) ToggleVisibility(ctx context.Context, id string) (*models.Media, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	media, ok := m.store.Media[id]
	if !ok {
		return nil, nil
	}
	media.Visible = !media.Visible
	return copyMedia(media), nil
}

func (m *MockMediaRepository) GetByID(ctx context.Context, id string) (*models.Media, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return copyMedia(m.store.Media[id]), nil
}

func (m *MockMediaRepository) List(ctx context.Context, eventID string) ([]*models.Media, error) {
	return m.filter(func(media *models.Media) bool {
		return eventID == "" || media.EventID == eventID
	}), nil
}

func (m *MockMediaRepository) ListPublic(ctx context.Context, eventID string) ([]*models.Media, error) {
	m.store.mu.Lock()
	owner := copyEvent(m.store.Events[eventID])
	m.store.mu.Unlock()
	if owner == nil || owner.Status != models.EventStatusPublished {
		return []*models.Media{}, nil
	}
	return m.filter(func(media *models.Media) bool {
		return media.EventID == eventID && media.Visible && media.Type == models.MediaTypeImage
	}), nil
}

func (m *MockMediaRepository) filter(keep func(*models.Media) bool) []*models.Media {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	items := []*models.Media{}
	for _, media := range m.store.Media {
		if keep(media) {
			items = append(items, copyMedia(media))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

func (m *MockMediaRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.Media[id]; !ok {
		return false, nil
	}
	delete(m.store.Media, id)
	return true, nil
}

func (m *MockMediaRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Media), nil
}

// MockBlessingRepository is a mock implementation of BlessingRepository
type MockBlessingRepository struct {
	store       *Store
	InsertError error
}

var _ repository.BlessingRepository = (*MockBlessingRepository)(nil)

func NewMockBlessingRepository(store *Store) *MockBlessingRepository {
	return &MockBlessingRepository{store: store}
}

func (m *MockBlessingRepository) Create(ctx context.Context, blessing *models.Blessing) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	stored := copyBlessing(blessing)
	stored.EventTitle = ""
	m.store.Blessings[blessing.ID] = stored
	return nil
}

// withTitle must be called with the store lock held
func (m *MockBlessingRepository) withTitle(b *models.Blessing) *models.Blessing {
	c := copyBlessing(b)
	if e, ok := m.store.Events[b.EventID]; ok {
		c.EventTitle = e.Title
	}
	return c
}

func (m *MockBlessingRepository) SetStatus(ctx context.Context, id string, status models.BlessingStatus) (*models.Blessing, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	b, ok := m.store.Blessings[id]
	if !ok {
		return nil, nil
	}
	b.Status = status
	return m.withTitle(b), nil
}

func (m *MockBlessingRepository) GetByID(ctx context.Context, id string) (*models.Blessing, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	b, ok := m.store.Blessings[id]
	if !ok {
		return nil, nil
	}
	return m.withTitle(b), nil
}

func (m *MockBlessingRepository) List(ctx context.Context, eventID string) ([]*models.Blessing, error) {
	return m.filter(func(b *models.Blessing) bool {
		return eventID == "" || b.EventID == eventID
	}, true), nil
}

func (m *MockBlessingRepository) ListApproved(ctx context.Context, eventID string) ([]*models.Blessing, error) {
	return m.filter(func(b *models.Blessing) bool {
		return b.EventID == eventID && b.Status == models.BlessingStatusApproved && m.published(b.EventID)
	}, true), nil
}

func (m *MockBlessingRepository) Recent(ctx context.Context, limit int) ([]*models.Blessing, error) {
	list := m.filter(func(b *models.Blessing) bool {
		return b.Status == models.BlessingStatusApproved && m.published(b.EventID)
	}, true)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// published must be called with the store lock held
func (m *MockBlessingRepository) published(eventID string) bool {
	e, ok := m.store.Events[eventID]
	return ok && e.Status == models.EventStatusPublished
}

func (m *MockBlessingRepository) filter(keep func(*models.Blessing) bool, newestFirst bool) []*models.Blessing {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	list := []*models.Blessing{}
	for _, b := range m.store.Blessings {
		if keep(b) {
			list = append(list, m.withTitle(b))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if newestFirst {
			return list[i].SubmittedAt.After(list[j].SubmittedAt)
		}
		return list[i].SubmittedAt.Before(list[j].SubmittedAt)
	})
	return list
}

func (m *MockBlessingRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.Blessings[id]; !ok {
		return false, nil
	}
	delete(m.store.Blessings, id)
	return true, nil
}

func (m *MockBlessingRepository) CountByStatus(ctx context.Context) (map[models.BlessingStatus]int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	counts := map[models.BlessingStatus]int{
		models.BlessingStatusPending:  0,
		models.BlessingStatusApproved: 0,
		models.BlessingStatusRejected: 0,
	}
	for _, b := range m.store.Blessings {
		counts[b.Status]++
	}
	return counts, nil
}

func (m *MockBlessingRepository) StreamByEvent(ctx context.Context, eventID string, callback func(*models.Blessing) error) error {
	list := m.filter(func(b *models.Blessing) bool { return b.EventID == eventID }, false)
	for _, b := range list {
		if err := callback(b); err != nil {
			return err
		}
	}
	return nil
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mu              sync.Mutex
	Jobs            map[string]*models.IngestJob
	IdempotencyKeys map[string]*models.IngestJob
	Skips           map[string][]models.SkippedFile
}

var _ repository.JobRepository = (*MockJobRepository)(nil)

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:            make(map[string]*models.IngestJob),
		IdempotencyKeys: make(map[string]*models.IngestJob),
		Skips:           make(map[string][]models.SkippedFile),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.IngestJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *job
	m.Jobs[job.ID] = &stored
	if job.IdempotencyKey != "" {
		m.IdempotencyKeys[job.IdempotencyKey] = &stored
	}
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.IngestJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Jobs[job.ID]; ok {
		*existing = *job
	}
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok {
		return nil, nil
	}
	c := *job
	return &c, nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.IdempotencyKeys[key]
	if !ok {
		return nil, nil
	}
	c := *job
	return &c, nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.IngestJob
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			c := *job
			pending = append(pending, &c)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[jobID]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	now := time.Now()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	return true, nil
}

func (m *MockJobRepository) AddSkips(ctx context.Context, jobID string, skips []models.SkippedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skips[jobID] = append(m.Skips[jobID], skips...)
	return nil
}

func (m *MockJobRepository) GetSkips(ctx context.Context, jobID string, limit int) ([]models.SkippedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	skips := m.Skips[jobID]
	if limit > 0 && len(skips) > limit {
		skips = skips[:limit]
	}
	return append([]models.SkippedFile{}, skips...), nil
}
