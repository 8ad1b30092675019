package service_test

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/event-gallery-api/internal/config"
	"github.com/event-gallery-api/internal/drive"
	"github.com/event-gallery-api/internal/metrics"
	"github.com/event-gallery-api/internal/mocks"
	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/repository"
	"github.com/event-gallery-api/internal/service"
	"github.com/rs/zerolog"
)

type testHarness struct {
	services *service.Services
	repos    *repository.Repositories
	store    *mocks.Store
	lister   *mocks.MockLister
	jobRepo  *mocks.MockJobRepository
}

func newTestHarness(t *testing.T, policy string) *testHarness {
	t.Helper()

	repos, store := mocks.NewMockRepositories()
	lister := mocks.NewMockLister()

	cfg := &config.Config{
		Ingest:     config.IngestConfig{PageSize: 100, FollowPages: true, Workers: 2},
		Moderation: config.ModerationConfig{BlessingPolicy: policy},
	}

	services, err := service.NewServices(repos, lister, cfg, metrics.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServices failed: %v", err)
	}

	return &testHarness{
		services: services,
		repos:    repos,
		store:    store,
		lister:   lister,
		jobRepo:  repos.Job.(*mocks.MockJobRepository),
	}
}

func (h *testHarness) createEvent(t *testing.T, title string, status models.EventStatus) *models.Event {
	t.Helper()
	event, err := h.services.Moderation.CreateEvent(context.Background(), &models.EventInput{
		Title:  title,
		Date:   "2024-06-01",
		Status: string(status),
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return event
}

func (h *testHarness) createMedia(t *testing.T, eventID string, mediaType models.MediaType, visible bool) *models.Media {
	t.Helper()
	media, err := h.services.Moderation.CreateMedia(context.Background(), &models.MediaInput{
		EventID: eventID,
		Type:    string(mediaType),
		FileURL: "https://cdn.example.com/" + string(mediaType),
		Visible: &visible,
	})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}
	return media
}

// --- Moderation ---

func TestCreateEvent_DefaultsToDraft(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", "")

	if event.Status != models.EventStatusDraft {
		t.Errorf("Expected draft, got %s", event.Status)
	}
	if event.Date.String() != "2024-06-01" {
		t.Errorf("Expected date 2024-06-01, got %s", event.Date)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)

	_, err := h.services.Moderation.CreateEvent(context.Background(), &models.EventInput{Title: "", Date: "not-a-date"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	if len(h.store.Events) != 0 {
		t.Errorf("Expected no event stored, got %d", len(h.store.Events))
	}
}

func TestSetEventStatus_Idempotent(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)

	for _, status := range []models.EventStatus{
		models.EventStatusPublished, models.EventStatusPublished,
		models.EventStatusDraft, models.EventStatusDraft,
	} {
		updated, err := h.services.Moderation.SetEventStatus(ctx, event.ID, status)
		if err != nil {
			t.Fatalf("SetEventStatus(%s) failed: %v", status, err)
		}
		if updated.Status != status {
			t.Errorf("Expected %s, got %s", status, updated.Status)
		}
	}
}

func TestSetEventStatus_Errors(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()

	// a stored row without a date cannot be published
	undated := &models.Event{ID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", Title: "Party", Status: models.EventStatusDraft}
	h.repos.Event.Create(ctx, undated)

	tests := []struct {
		name    string
		id      string
		status  models.EventStatus
		wantErr error
	}{
		{"missing event", "6ba7b811-9dad-11d1-80b4-00c04fd430c8", models.EventStatusPublished, models.ErrNotFound},
		{"malformed id", "nope", models.EventStatusPublished, models.ErrNotFound},
		{"unknown status", undated.ID, "archived", models.ErrValidation},
		{"publish without date", undated.ID, models.EventStatusPublished, models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.services.Moderation.SetEventStatus(ctx, tt.id, tt.status)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSetEventStatus_DoesNotCascade(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	media := h.createMedia(t, event.ID, models.MediaTypeImage, true)

	if _, err := h.services.Moderation.SetEventStatus(ctx, event.ID, models.EventStatusDraft); err != nil {
		t.Fatalf("SetEventStatus failed: %v", err)
	}

	stored, _ := h.repos.Media.GetByID(ctx, media.ID)
	if !stored.Visible {
		t.Error("Unpublishing an event must not change media visibility")
	}
}

func TestDeleteEvent_Cascades(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	other := h.createEvent(t, "Party", models.EventStatusPublished)

	h.createMedia(t, event.ID, models.MediaTypeImage, true)
	h.createMedia(t, event.ID, models.MediaTypeVideo, false)
	h.createMedia(t, other.ID, models.MediaTypeImage, true)
	h.services.Moderation.SubmitBlessing(ctx, event.ID, &models.BlessingSubmission{AuthorName: "Dana", Text: "Mazal tov"})

	if err := h.services.Moderation.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	if len(h.store.Media) != 1 {
		t.Errorf("Expected 1 media left, got %d", len(h.store.Media))
	}
	if len(h.store.Blessings) != 0 {
		t.Errorf("Expected 0 blessings left, got %d", len(h.store.Blessings))
	}

	if err := h.services.Moderation.DeleteEvent(ctx, event.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateMedia_UnknownEvent(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)

	_, err := h.services.Moderation.CreateMedia(context.Background(), &models.MediaInput{
		EventID: "6ba7b811-9dad-11d1-80b4-00c04fd430c8",
		Type:    "image",
		FileURL: "https://cdn.example.com/a.jpg",
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateMedia_NormalizesTags(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)

	media, err := h.services.Moderation.CreateMedia(context.Background(), &models.MediaInput{
		EventID: event.ID,
		Type:    "image",
		FileURL: "https://cdn.example.com/a.jpg",
		Tags:    []string{"family", " family ", "dance", ""},
	})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}
	if len(media.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", media.Tags)
	}
	if !media.Visible {
		t.Error("Expected media to default to visible")
	}
}

func TestToggleMediaVisibility(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	media := h.createMedia(t, event.ID, models.MediaTypeImage, true)

	toggled, err := h.services.Moderation.ToggleMediaVisibility(ctx, media.ID)
	if err != nil {
		t.Fatalf("ToggleMediaVisibility failed: %v", err)
	}
	if toggled.Visible {
		t.Error("Expected hidden after first toggle")
	}

	toggled, _ = h.services.Moderation.ToggleMediaVisibility(ctx, media.ID)
	if !toggled.Visible {
		t.Error("Expected visible after second toggle")
	}

	_, err = h.services.Moderation.ToggleMediaVisibility(ctx, "6ba7b811-9dad-11d1-80b4-00c04fd430c8")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSubmitBlessing_AlwaysPending(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)

	blessing, err := h.services.Moderation.SubmitBlessing(context.Background(), event.ID, &models.BlessingSubmission{
		AuthorName: "Dana",
		Text:       "Mazal tov",
	})
	if err != nil {
		t.Fatalf("SubmitBlessing failed: %v", err)
	}
	if blessing.Status != models.BlessingStatusPending {
		t.Errorf("Expected pending, got %s", blessing.Status)
	}
	if blessing.SubmittedAt.IsZero() {
		t.Error("Expected submitted_at to be set")
	}
	if blessing.EventTitle != "Wedding" {
		t.Errorf("Expected event title, got %q", blessing.EventTitle)
	}
}

func TestSubmitBlessing_Errors(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	ctx := context.Background()

	_, err := h.services.Moderation.SubmitBlessing(ctx, event.ID, &models.BlessingSubmission{AuthorName: " ", Text: "hi"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}

	_, err = h.services.Moderation.SubmitBlessing(ctx, "6ba7b811-9dad-11d1-80b4-00c04fd430c8", &models.BlessingSubmission{AuthorName: "Dana", Text: "hi"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBlessingModerationScenario(t *testing.T) {
	tests := []struct {
		policy        string
		wantRejectErr error
	}{
		{config.BlessingPolicyOpen, nil},
		{config.BlessingPolicyStrict, models.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			h := newTestHarness(t, tt.policy)
			ctx := context.Background()
			event := h.createEvent(t, "החתונה", models.EventStatusPublished)

			blessing, err := h.services.Moderation.SubmitBlessing(ctx, event.ID, &models.BlessingSubmission{
				AuthorName: "דנה",
				Text:       "ברכה לדוגמה",
			})
			if err != nil {
				t.Fatalf("SubmitBlessing failed: %v", err)
			}

			public, _ := h.services.Query.ListApprovedBlessings(ctx, event.ID, "")
			if len(public) != 0 {
				t.Errorf("Pending blessing must not be public, got %d", len(public))
			}

			if _, err := h.services.Moderation.SetBlessingStatus(ctx, blessing.ID, models.BlessingStatusApproved); err != nil {
				t.Fatalf("approve failed: %v", err)
			}
			public, _ = h.services.Query.ListApprovedBlessings(ctx, event.ID, "דנה")
			if len(public) != 1 {
				t.Fatalf("Expected approved blessing to be public, got %d", len(public))
			}

			_, err = h.services.Moderation.SetBlessingStatus(ctx, blessing.ID, models.BlessingStatusRejected)
			if tt.wantRejectErr == nil && err != nil {
				t.Fatalf("reject failed: %v", err)
			}
			if tt.wantRejectErr != nil && !errors.Is(err, tt.wantRejectErr) {
				t.Fatalf("Expected %v, got %v", tt.wantRejectErr, err)
			}

			public, _ = h.services.Query.ListApprovedBlessings(ctx, event.ID, "")
			wantPublic := 0
			if tt.wantRejectErr != nil {
				wantPublic = 1
			}
			if len(public) != wantPublic {
				t.Errorf("Expected %d public blessings, got %d", wantPublic, len(public))
			}
		})
	}
}

func TestSetBlessingStatus_UnknownStatus(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	blessing, _ := h.services.Moderation.SubmitBlessing(context.Background(), event.ID, &models.BlessingSubmission{AuthorName: "Dana", Text: "hi"})

	_, err := h.services.Moderation.SetBlessingStatus(context.Background(), blessing.ID, "spam")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

// --- Queries ---

func TestPublicViews(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	published := h.createEvent(t, "Wedding", models.EventStatusPublished)
	draft := h.createEvent(t, "Secret", models.EventStatusDraft)

	visibleImage := h.createMedia(t, published.ID, models.MediaTypeImage, true)
	h.createMedia(t, published.ID, models.MediaTypeImage, false)
	h.createMedia(t, published.ID, models.MediaTypeVideo, true)
	h.createMedia(t, draft.ID, models.MediaTypeImage, true)

	events, err := h.services.Query.ListPublishedEvents(ctx)
	if err != nil {
		t.Fatalf("ListPublishedEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != published.ID {
		t.Errorf("Expected only the published event, got %d", len(events))
	}

	if _, err := h.services.Query.GetPublishedEvent(ctx, draft.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for draft, got %v", err)
	}

	media, err := h.services.Query.ListPublicMedia(ctx, published.ID)
	if err != nil {
		t.Fatalf("ListPublicMedia failed: %v", err)
	}
	if len(media) != 1 || media[0].ID != visibleImage.ID {
		t.Errorf("Expected only the visible image, got %d items", len(media))
	}

	if _, err := h.services.Query.ListPublicMedia(ctx, draft.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for draft gallery, got %v", err)
	}
}

func TestRecentBlessings(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	published := h.createEvent(t, "Wedding", models.EventStatusPublished)
	draft := h.createEvent(t, "Secret", models.EventStatusDraft)

	for i := 0; i < 8; i++ {
		b, _ := h.services.Moderation.SubmitBlessing(ctx, published.ID, &models.BlessingSubmission{AuthorName: "Guest", Text: "hi"})
		h.services.Moderation.SetBlessingStatus(ctx, b.ID, models.BlessingStatusApproved)
	}
	hidden, _ := h.services.Moderation.SubmitBlessing(ctx, draft.ID, &models.BlessingSubmission{AuthorName: "Guest", Text: "hi"})
	h.services.Moderation.SetBlessingStatus(ctx, hidden.ID, models.BlessingStatusApproved)

	recent, err := h.services.Query.RecentBlessings(ctx, 0)
	if err != nil {
		t.Fatalf("RecentBlessings failed: %v", err)
	}
	if len(recent) != 6 {
		t.Errorf("Expected default limit 6, got %d", len(recent))
	}
	for _, b := range recent {
		if b.EventID != published.ID || b.EventTitle != "Wedding" {
			t.Errorf("Unexpected blessing in recent list: %+v", b)
		}
	}
}

func TestAdminBucketsAndStats(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	published := h.createEvent(t, "Wedding", models.EventStatusPublished)
	h.createEvent(t, "Secret", models.EventStatusDraft)
	h.createMedia(t, published.ID, models.MediaTypeImage, true)
	h.createMedia(t, published.ID, models.MediaTypeVideo, false)

	b1, _ := h.services.Moderation.SubmitBlessing(ctx, published.ID, &models.BlessingSubmission{AuthorName: "A", Text: "a"})
	h.services.Moderation.SubmitBlessing(ctx, published.ID, &models.BlessingSubmission{AuthorName: "B", Text: "b"})
	h.services.Moderation.SetBlessingStatus(ctx, b1.ID, models.BlessingStatusRejected)

	events, _ := h.services.Query.AdminEvents(ctx)
	if len(events.Draft) != 1 || len(events.Published) != 1 {
		t.Errorf("Expected 1 draft and 1 published, got %d and %d", len(events.Draft), len(events.Published))
	}

	media, _ := h.services.Query.AdminMedia(ctx, published.ID)
	if len(media.Visible) != 1 || len(media.Hidden) != 1 {
		t.Errorf("Expected 1 visible and 1 hidden, got %d and %d", len(media.Visible), len(media.Hidden))
	}

	blessings, _ := h.services.Query.AdminBlessings(ctx, "")
	if len(blessings.Pending) != 1 || len(blessings.Rejected) != 1 || len(blessings.Approved) != 0 {
		t.Errorf("Unexpected blessing buckets: %d/%d/%d", len(blessings.Pending), len(blessings.Approved), len(blessings.Rejected))
	}

	stats, err := h.services.Query.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Media != 2 || stats.Events[models.EventStatusDraft] != 1 || stats.Blessings[models.BlessingStatusPending] != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if _, err := h.services.Query.AdminMedia(ctx, "bad-id"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation for bad filter, got %v", err)
	}
}

// --- Ingestion ---

func weddingFolder() []drive.File {
	return []drive.File{
		{ID: "f-1", Name: "a.jpg", MimeType: "image/jpeg", ContentURL: "https://drive.example.com/uc?id=f-1"},
		{ID: "f-2", Name: "b.mp4", MimeType: "video/mp4", ContentURL: "https://drive.example.com/uc?id=f-2"},
		{ID: "f-3", Name: "c.pdf", MimeType: "application/pdf", ContentURL: "https://drive.example.com/uc?id=f-3"},
	}
}

func TestPreviewFolder_DoesNotWrite(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)
	h.lister.AddFolder("folder-1", "Wedding", weddingFolder())

	result, err := h.services.Ingestion.PreviewFolder(context.Background(), event.ID, "folder-1")
	if err != nil {
		t.Fatalf("PreviewFolder failed: %v", err)
	}
	if len(result.Media) != 2 || result.Committed {
		t.Errorf("Expected 2 uncommitted candidates, got %d (committed=%v)", len(result.Media), result.Committed)
	}
	if len(h.store.Media) != 0 {
		t.Errorf("Preview must not write, found %d media", len(h.store.Media))
	}
}

func TestImportFolder(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)
	h.lister.AddFolder("folder-1", "Wedding", weddingFolder())

	result, err := h.services.Ingestion.ImportFolder(context.Background(), event.ID, "folder-1")
	if err != nil {
		t.Fatalf("ImportFolder failed: %v", err)
	}
	if !result.Committed || len(result.Media) != 2 || len(result.Skipped) != 1 {
		t.Errorf("Unexpected result: committed=%v media=%d skipped=%d", result.Committed, len(result.Media), len(result.Skipped))
	}
	if len(h.store.Media) != 2 {
		t.Errorf("Expected 2 stored media, got %d", len(h.store.Media))
	}
}

func TestImportFolder_Errors(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)
	ctx := context.Background()

	if _, err := h.services.Ingestion.ImportFolder(ctx, event.ID, "missing-folder"); !errors.Is(err, models.ErrExternalService) {
		t.Errorf("Expected ErrExternalService, got %v", err)
	}
	if _, err := h.services.Ingestion.ImportFolder(ctx, "6ba7b811-9dad-11d1-80b4-00c04fd430c8", "folder-1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := h.services.Ingestion.ImportFolder(ctx, event.ID, ""); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestCreateEventFromFolder(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	h.lister.AddFolder("folder-1", "החתונה של דנה", weddingFolder())

	event, result, err := h.services.Ingestion.CreateEventFromFolder(context.Background(), &models.FolderEventRequest{
		Date:     "2024-06-01",
		FolderID: "folder-1",
	})
	if err != nil {
		t.Fatalf("CreateEventFromFolder failed: %v", err)
	}
	if event.Title != "החתונה של דנה" {
		t.Errorf("Expected title from folder name, got %q", event.Title)
	}
	if event.Status != models.EventStatusDraft {
		t.Errorf("Expected draft event, got %s", event.Status)
	}
	if len(result.Media) != 2 {
		t.Errorf("Expected 2 imported media, got %d", len(result.Media))
	}
}

func TestImportJob_Lifecycle(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)
	h.lister.AddFolder("folder-1", "Wedding", weddingFolder())

	req := &models.IngestRequest{EventID: event.ID, FolderID: "folder-1", IdempotencyKey: "key-1"}
	job, existing, err := h.services.Ingestion.CreateImportJob(ctx, req)
	if err != nil {
		t.Fatalf("CreateImportJob failed: %v", err)
	}
	if existing || job.Status != models.JobStatusPending {
		t.Errorf("Expected new pending job, got existing=%v status=%s", existing, job.Status)
	}

	again, existing, _ := h.services.Ingestion.CreateImportJob(ctx, req)
	if !existing || again.ID != job.ID {
		t.Errorf("Expected the same job for a repeated idempotency key")
	}

	if err := h.services.Ingestion.ProcessJob(ctx, job); err != nil {
		t.Fatalf("ProcessJob failed: %v", err)
	}

	resp, err := h.services.Job.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if resp.Status != models.JobStatusCompleted || resp.ImportedCount != 2 || resp.SkippedCount != 1 || resp.TotalFiles != 3 {
		t.Errorf("Unexpected job: %+v", resp.IngestJob)
	}
	if resp.SkippedReport != "/v1/admin/imports/"+job.ID+"/skipped" {
		t.Errorf("Unexpected skipped report %q", resp.SkippedReport)
	}

	skips, _ := h.services.Job.GetJobSkips(ctx, job.ID)
	if len(skips) != 1 || skips[0].FileID != "f-3" {
		t.Errorf("Expected the pdf in skipped files, got %+v", skips)
	}
}

func TestImportJob_Failure(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)

	job, _, _ := h.services.Ingestion.CreateImportJob(ctx, &models.IngestRequest{EventID: event.ID, FolderID: "gone"})
	if err := h.services.Ingestion.ProcessJob(ctx, job); err == nil {
		t.Fatal("Expected ProcessJob to fail for a missing folder")
	}

	stored, _ := h.jobRepo.GetByID(ctx, job.ID)
	if stored.Status != models.JobStatusFailed || stored.ErrorMessage == "" {
		t.Errorf("Expected failed job with message, got %s %q", stored.Status, stored.ErrorMessage)
	}
}

func TestJobProcessor_RunsPendingJobs(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusDraft)
	h.lister.AddFolder("folder-1", "Wedding", weddingFolder())

	job, _, _ := h.services.Ingestion.CreateImportJob(ctx, &models.IngestRequest{EventID: event.ID, FolderID: "folder-1"})

	go h.services.Job.StartProcessor(ctx)
	defer h.services.Job.StopProcessor()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		stored, _ := h.jobRepo.GetByID(ctx, job.ID)
		if stored.Status == models.JobStatusCompleted {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("Job was not processed in time")
}

func TestGetJob_NotFound(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	if _, err := h.services.Job.GetJob(context.Background(), "6ba7b811-9dad-11d1-80b4-00c04fd430c8"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// --- Export ---

func TestExportService_StreamBlessingsCSV(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	h.services.Moderation.SubmitBlessing(ctx, event.ID, &models.BlessingSubmission{AuthorName: "דנה", Text: "ברכה, לדוגמה"})

	rec := httptest.NewRecorder()
	if err := h.services.Export.StreamBlessings(ctx, rec, event.ID, "csv"); err != nil {
		t.Fatalf("StreamBlessings failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header + 1 row, got %d", len(records))
	}
	if records[1][2] != "דנה" || records[1][4] != "ברכה, לדוגמה" {
		t.Errorf("Unexpected row: %v", records[1])
	}
}

func TestExportService_StreamBlessingsNDJSON(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	ctx := context.Background()
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)
	for i := 0; i < 3; i++ {
		h.services.Moderation.SubmitBlessing(ctx, event.ID, &models.BlessingSubmission{AuthorName: "Guest", Text: "hi"})
	}

	rec := httptest.NewRecorder()
	if err := h.services.Export.StreamBlessings(ctx, rec, event.ID, "ndjson"); err != nil {
		t.Fatalf("StreamBlessings failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
	if rec.Header().Get("Content-Type") != "application/x-ndjson" {
		t.Errorf("Unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	h := newTestHarness(t, config.BlessingPolicyOpen)
	event := h.createEvent(t, "Wedding", models.EventStatusPublished)

	err := h.services.Export.StreamBlessings(context.Background(), httptest.NewRecorder(), event.ID, "xml")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}
