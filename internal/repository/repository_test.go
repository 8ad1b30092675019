package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/event-gallery-api/internal/database"
	"github.com/event-gallery-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return database.Wrap(db, zerolog.Nop()), mock
}

var eventRowColumns = []string{
	"id", "title", "date", "location", "cover_image_url", "description_short",
	"description_full", "status", "created_at", "updated_at",
}

var mediaRowColumns = []string{
	"id", "event_id", "type", "file_url", "thumbnail_url", "title", "caption", "tags", "visible", "created_at",
}

var blessingRowColumns = []string{
	"id", "event_id", "title", "author_name", "author_relation", "text", "media_url", "status", "submitted_at",
}

func TestEventRepo_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	now := time.Now()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("evt-1", "Wedding", date, "Haifa", nil, "short", nil, "published", now, now)

	mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1`).
		WithArgs("evt-1").
		WillReturnRows(rows)

	event, err := repo.GetByID(context.Background(), "evt-1")

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "Wedding", event.Title)
	assert.Equal(t, "2024-06-01", event.Date.String())
	assert.Equal(t, "Haifa", event.Location)
	assert.Empty(t, event.CoverImageURL)
	assert.Equal(t, models.EventStatusPublished, event.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(eventRowColumns))

	event, err := repo.GetByID(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, event)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_GetByID_UnknownStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("evt-1", "Wedding", now, nil, nil, nil, nil, "archived", now, now)

	mock.ExpectQuery(`SELECT .+ FROM events`).WillReturnRows(rows)

	_, err := repo.GetByID(context.Background(), "evt-1")

	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestEventRepo_SetStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("evt-1", "Wedding", now, nil, nil, nil, nil, "published", now, now)

	mock.ExpectQuery(`UPDATE events SET status = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
		WithArgs(models.EventStatusPublished, sqlmock.AnyArg(), "evt-1").
		WillReturnRows(rows)

	event, err := repo.SetStatus(context.Background(), "evt-1", models.EventStatusPublished)

	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPublished, event.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("evt-2", "Party", now, nil, nil, nil, nil, "published", now, now).
		AddRow("evt-1", "Wedding", now.AddDate(0, -1, 0), nil, nil, nil, nil, "published", now, now)

	mock.ExpectQuery(`FROM events WHERE status = \$1 ORDER BY date DESC, created_at DESC`).
		WithArgs(models.EventStatusPublished).
		WillReturnRows(rows)

	events, err := repo.ListByStatus(context.Background(), models.EventStatusPublished)

	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "evt-2", events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs("evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs("evt-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_CountByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM events GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("published", 3))

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.EventStatusPublished])
	assert.Equal(t, 0, counts[models.EventStatusDraft])
}

func TestMediaRepo_ToggleVisibility(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMediaRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(mediaRowColumns).
		AddRow("m-1", "evt-1", "image", "https://cdn.example.com/a.jpg", nil, "a.jpg", nil, "{family,dance}", false, now)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE media SET visible = NOT visible WHERE id = $1`)).
		WithArgs("m-1").
		WillReturnRows(rows)

	media, err := repo.ToggleVisibility(context.Background(), "m-1")

	require.NoError(t, err)
	require.NotNil(t, media)
	assert.False(t, media.Visible)
	assert.Equal(t, []string{"family", "dance"}, media.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepo_ToggleVisibility_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMediaRepo(db)

	mock.ExpectQuery(`UPDATE media SET visible = NOT visible`).
		WillReturnRows(sqlmock.NewRows(mediaRowColumns))

	media, err := repo.ToggleVisibility(context.Background(), "m-404")

	assert.NoError(t, err)
	assert.Nil(t, media)
}

func TestMediaRepo_ListPublic(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMediaRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(mediaRowColumns).
		AddRow("m-1", "evt-1", "image", "https://cdn.example.com/a.jpg", nil, nil, nil, "{}", true, now)

	mock.ExpectQuery(`WHERE m.event_id = \$1 AND m.visible AND m.type = 'image' AND e.status = 'published'`).
		WithArgs("evt-1").
		WillReturnRows(rows)

	items, err := repo.ListPublic(context.Background(), "evt-1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{}, items[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepo_List_BadType(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMediaRepo(db)

	rows := sqlmock.NewRows(mediaRowColumns).
		AddRow("m-1", "evt-1", "audio", "https://cdn.example.com/a.mp3", nil, nil, nil, "{}", true, time.Now())

	mock.ExpectQuery(`FROM media ORDER BY created_at DESC`).WillReturnRows(rows)

	_, err := repo.List(context.Background(), "")

	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestMediaRepo_BatchInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMediaRepo(db)

	items := []*models.Media{
		{ID: "m-1", EventID: "evt-1", Type: models.MediaTypeImage, FileURL: "https://x/1", Visible: true, CreatedAt: time.Now()},
		{ID: "m-2", EventID: "evt-1", Type: models.MediaTypeVideo, FileURL: "https://x/2", Visible: true, CreatedAt: time.Now()},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`COPY "media"`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.BatchInsert(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepo_BatchInsert_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMediaRepo(db)

	n, err := repo.BatchInsert(context.Background(), nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlessingRepo_ListApproved(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlessingRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(blessingRowColumns).
		AddRow("b-1", "evt-1", "Wedding", "דנה", nil, "ברכה לדוגמה", nil, "approved", now)

	mock.ExpectQuery(`WHERE b.event_id = \$1 AND b.status = 'approved' AND e.status = 'published'`).
		WithArgs("evt-1").
		WillReturnRows(rows)

	blessings, err := repo.ListApproved(context.Background(), "evt-1")

	require.NoError(t, err)
	require.Len(t, blessings, 1)
	assert.Equal(t, "דנה", blessings[0].AuthorName)
	assert.Equal(t, "Wedding", blessings[0].EventTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlessingRepo_Recent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlessingRepo(db)

	mock.ExpectQuery(`LIMIT \$1`).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows(blessingRowColumns))

	blessings, err := repo.Recent(context.Background(), 6)

	require.NoError(t, err)
	assert.Empty(t, blessings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlessingRepo_SetStatus_DBError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlessingRepo(db)

	mock.ExpectQuery(`UPDATE blessings b SET status = \$1`).
		WillReturnError(errors.New("connection reset"))

	b, err := repo.SetStatus(context.Background(), "b-1", models.BlessingStatusApproved)

	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestBlessingRepo_StreamByEvent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlessingRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(blessingRowColumns).
		AddRow("b-1", "evt-1", "Wedding", "Dana", "friend", "Mazal tov", nil, "approved", now).
		AddRow("b-2", "evt-1", "Wedding", "Avi", nil, "Congrats", nil, "pending", now)

	mock.ExpectQuery(`WHERE b.event_id = \$1\s+ORDER BY b.submitted_at`).
		WithArgs("evt-1").
		WillReturnRows(rows)

	var ids []string
	err := repo.StreamByEvent(context.Background(), "evt-1", func(b *models.Blessing) error {
		ids = append(ids, b.ID)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b-1", "b-2"}, ids)
}

func TestJobRepo_MarkJobAsProcessing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepo(db)

	mock.ExpectExec(`UPDATE ingest_jobs SET status = 'processing'`).
		WithArgs(sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE ingest_jobs SET status = 'processing'`).
		WithArgs(sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.MarkJobAsProcessing(context.Background(), "job-1")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.MarkJobAsProcessing(context.Background(), "job-1")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestJobRepo_GetSkips_WithLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepo(db)

	rows := sqlmock.NewRows([]string{"file_id", "file_name", "mime_type", "reason"}).
		AddRow("f-1", "notes.pdf", "application/pdf", "unsupported mime type")

	mock.ExpectQuery(`FROM ingest_job_skips WHERE job_id = \$1 ORDER BY id LIMIT \$2`).
		WithArgs("job-1", 10).
		WillReturnRows(rows)

	skips, err := repo.GetSkips(context.Background(), "job-1", 10)

	require.NoError(t, err)
	require.Len(t, skips, 1)
	assert.Equal(t, "notes.pdf", skips[0].FileName)
}
