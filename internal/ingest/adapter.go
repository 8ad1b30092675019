// Package ingest turns an external folder listing into candidate media rows
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/event-gallery-api/internal/config"
	"github.com/event-gallery-api/internal/drive"
	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Skip reasons recorded for files that do not become media
const (
	ReasonUnsupportedType = "unsupported mime type"
	ReasonMissingLink     = "missing content link"
	ReasonInvalid         = "invalid candidate"
)

// Result is the uncommitted outcome of a folder sync
type Result struct {
	Candidates    []*models.Media
	Skipped       []models.SkippedFile
	NextPageToken string
	Pages         int
}

// Adapter lists a folder and maps its entries to media candidates.
// It never writes to the store.
type Adapter struct {
	lister    drive.Lister
	validator *validation.Validator
	cfg       config.IngestConfig
	now       func() time.Time
	log       zerolog.Logger
}

// NewAdapter creates an ingestion adapter
func NewAdapter(lister drive.Lister, cfg config.IngestConfig, v *validation.Validator, log zerolog.Logger) *Adapter {
	return &Adapter{
		lister:    lister,
		validator: v,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("component", "ingest").Logger(),
	}
}

// Sync lists folderID and returns candidates for eventID. Listing errors
// are returned as-is from the lister and are never retried.
func (a *Adapter) Sync(ctx context.Context, eventID, folderID string) (*Result, error) {
	result := &Result{
		Candidates: []*models.Media{},
		Skipped:    []models.SkippedFile{},
	}

	token := ""
	for {
		page, err := a.lister.ListFolder(ctx, folderID, token, a.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		result.Pages++

		for _, f := range page.Files {
			m, skip := MapFile(eventID, f, a.now())
			if skip != nil {
				if skip.Reason == ReasonMissingLink && a.cfg.Strict {
					return nil, models.NewValidationError("file_url", "file has no content link", f.ID)
				}
				result.Skipped = append(result.Skipped, *skip)
				continue
			}

			if err := a.validator.ValidateCandidate(m); err != nil {
				if a.cfg.Strict {
					return nil, fmt.Errorf("file %s: %w", f.ID, err)
				}
				result.Skipped = append(result.Skipped, skipped(f, ReasonInvalid))
				continue
			}
			result.Candidates = append(result.Candidates, m)
		}

		token = page.NextPageToken
		if token == "" {
			break
		}
		if !a.cfg.FollowPages || (a.cfg.MaxPages > 0 && result.Pages >= a.cfg.MaxPages) {
			result.NextPageToken = token
			break
		}
	}

	a.log.Info().
		Str("event_id", eventID).
		Str("folder_id", folderID).
		Int("pages", result.Pages).
		Int("candidates", len(result.Candidates)).
		Int("skipped", len(result.Skipped)).
		Msg("Folder synced")

	return result, nil
}

// MapFile converts one listing entry into a visible media candidate, or
// reports why it was skipped
func MapFile(eventID string, f drive.File, now time.Time) (*models.Media, *models.SkippedFile) {
	var mediaType models.MediaType
	switch {
	case strings.HasPrefix(f.MimeType, "image/"):
		mediaType = models.MediaTypeImage
	case strings.HasPrefix(f.MimeType, "video/"):
		mediaType = models.MediaTypeVideo
	default:
		s := skipped(f, ReasonUnsupportedType)
		return nil, &s
	}

	if f.ContentURL == "" {
		s := skipped(f, ReasonMissingLink)
		return nil, &s
	}

	createdAt := f.CreatedTime
	if createdAt.IsZero() {
		createdAt = now
	}

	return &models.Media{
		ID:           uuid.NewString(),
		EventID:      eventID,
		Type:         mediaType,
		FileURL:      f.ContentURL,
		ThumbnailURL: f.ThumbnailURL,
		Title:        f.Name,
		Tags:         []string{},
		Visible:      true,
		CreatedAt:    createdAt,
	}, nil
}

func skipped(f drive.File, reason string) models.SkippedFile {
	return models.SkippedFile{
		FileID:   f.ID,
		FileName: f.Name,
		MimeType: f.MimeType,
		Reason:   reason,
	}
}
