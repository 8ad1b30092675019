package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/repository"
	"github.com/rs/zerolog"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamBlessings writes every blessing of an event, in any status, to w.
// Rows are streamed from the store without buffering the whole guestbook.
func (s *exportService) StreamBlessings(ctx context.Context, w http.ResponseWriter, eventID, format string) error {
	switch format {
	case FormatNDJSON, FormatJSON, FormatCSV:
	default:
		return models.NewValidationError("format", "unsupported format, must be one of: ndjson, json, csv", format)
	}
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

	s.log.Info().Str("event_id", eventID).Str("format", format).Msg("Starting blessings export")

	filename := fmt.Sprintf("blessings-%s.%s", eventID, format)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	var count int
	switch format {
	case FormatNDJSON:
		count, err = s.streamNDJSON(ctx, w, eventID)
	case FormatJSON:
		count, err = s.streamJSON(ctx, w, eventID)
	case FormatCSV:
		count, err = s.streamCSV(ctx, w, eventID)
	}
	if err != nil {
		return storeErr("stream blessings", err)
	}

	s.log.Info().Int("count", count).Str("event_id", eventID).Msg("Blessings export completed")
	return nil
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter, eventID string) (int, error) {
	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	count := 0

	err := s.repos.Blessing.StreamByEvent(ctx, eventID, func(b *models.Blessing) error {
		if err := enc.Encode(b); err != nil {
			return err
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	return count, err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter, eventID string) (int, error) {
	w.Header().Set("Content-Type", "application/json")

	w.Write([]byte("["))
	count := 0

	err := s.repos.Blessing.StreamByEvent(ctx, eventID, func(b *models.Blessing) error {
		if count > 0 {
			w.Write([]byte(","))
		}
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		w.Write(data)
		count++
		return nil
	})

	w.Write([]byte("]"))
	return count, err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter, eventID string) (int, error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "event_id", "author_name", "author_relation", "text", "media_url", "status", "submitted_at"})

	count := 0
	err := s.repos.Blessing.StreamByEvent(ctx, eventID, func(b *models.Blessing) error {
		count++
		return writer.Write([]string{
			b.ID,
			b.EventID,
			b.AuthorName,
			b.AuthorRelation,
			b.Text,
			b.MediaURL,
			string(b.Status),
			b.SubmittedAt.UTC().Format(time.RFC3339),
		})
	})
	return count, err
}
