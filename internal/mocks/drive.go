package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/event-gallery-api/internal/drive"
	"github.com/event-gallery-api/internal/models"
)

// MockLister serves canned folder pages. Pages[folder][i] is returned for
// the i-th request; the next token of page i is "page-<i+1>" when more exist.
type MockLister struct {
	mu        sync.Mutex
	Pages     map[string][][]drive.File
	Names     map[string]string
	ListError error
	ListCalls int
}

var _ drive.Lister = (*MockLister)(nil)

func NewMockLister() *MockLister {
	return &MockLister{
		Pages: make(map[string][][]drive.File),
		Names: make(map[string]string),
	}
}

// AddFolder registers a folder with its name and pages of files
func (m *MockLister) AddFolder(folderID, name string, pages ...[]drive.File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Names[folderID] = name
	m.Pages[folderID] = pages
}

func (m *MockLister) ListFolder(ctx context.Context, folderID, pageToken string, pageSize int64) (*drive.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++

	if m.ListError != nil {
		return nil, m.ListError
	}
	pages, ok := m.Pages[folderID]
	if !ok {
		return nil, fmt.Errorf("%w: folder %s not found", models.ErrExternalService, folderID)
	}

	idx := 0
	if pageToken != "" {
		if _, err := fmt.Sscanf(pageToken, "page-%d", &idx); err != nil || idx >= len(pages) {
			return nil, fmt.Errorf("%w: bad page token %q", models.ErrExternalService, pageToken)
		}
	}
	if len(pages) == 0 {
		return &drive.Page{}, nil
	}

	page := &drive.Page{Files: pages[idx]}
	if idx+1 < len(pages) {
		page.NextPageToken = fmt.Sprintf("page-%d", idx+1)
	}
	return page, nil
}

func (m *MockLister) FolderName(ctx context.Context, folderID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return "", m.ListError
	}
	name, ok := m.Names[folderID]
	if !ok {
		return "", fmt.Errorf("%w: folder %s not found", models.ErrExternalService, folderID)
	}
	return name, nil
}
