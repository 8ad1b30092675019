package service

import (
	"context"
	"time"

	"github.com/event-gallery-api/internal/metrics"
	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/moderation"
	"github.com/event-gallery-api/internal/repository"
	"github.com/event-gallery-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// moderationService is the concrete implementation of ModerationService
type moderationService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	policy    moderation.BlessingPolicy
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// newModerationService creates a new ModerationService
func newModerationService(repos *repository.Repositories, v *validation.Validator, policy moderation.BlessingPolicy, m *metrics.Metrics, log zerolog.Logger) *moderationService {
	return &moderationService{
		repos:     repos,
		validator: v,
		policy:    policy,
		metrics:   m,
		log:       log.With().Str("service", "moderation").Str("blessing_policy", policy.Name()).Logger(),
	}
}

// Events

func (s *moderationService) CreateEvent(ctx context.Context, in *models.EventInput) (*models.Event, error) {
	date, err := s.validator.ValidateEventInput(in)
	if err != nil {
		return nil, err
	}

	status := models.EventStatusDraft
	if in.Status != "" {
		status = models.EventStatus(in.Status)
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:               uuid.NewString(),
		Title:            in.Title,
		Date:             date,
		Location:         in.Location,
		CoverImageURL:    in.CoverImageURL,
		DescriptionShort: in.DescriptionShort,
		DescriptionFull:  in.DescriptionFull,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := moderation.CheckEventStatus(event, status); err != nil {
		return nil, err
	}

	if err := s.repos.Event.Create(ctx, event); err != nil {
		return nil, storeErr("create event", err)
	}

	s.log.Info().Str("event_id", event.ID).Str("status", string(event.Status)).Msg("Event created")
	return event, nil
}

func (s *moderationService) UpdateEvent(ctx context.Context, id string, in *models.EventInput) (*models.Event, error) {
	if err := lookupID("event", id); err != nil {
		return nil, err
	}
	date, err := s.validator.ValidateEventInput(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Event.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	if existing == nil {
		return nil, notFound("event", id)
	}

	existing.Title = in.Title
	existing.Date = date
	existing.Location = in.Location
	existing.CoverImageURL = in.CoverImageURL
	existing.DescriptionShort = in.DescriptionShort
	existing.DescriptionFull = in.DescriptionFull
	if in.Status != "" {
		existing.Status = models.EventStatus(in.Status)
	}
	if err := moderation.CheckEventStatus(existing, existing.Status); err != nil {
		return nil, err
	}

	updated, err := s.repos.Event.Update(ctx, existing)
	if err != nil {
		return nil, storeErr("update event", err)
	}
	if updated == nil {
		return nil, notFound("event", id)
	}

	s.log.Info().Str("event_id", id).Msg("Event updated")
	return updated, nil
}

// SetEventStatus is idempotent: re-applying the current status succeeds
// without a write. Children keep their own visibility.
func (s *moderationService) SetEventStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be draft or published", string(status))
	}
	if err := lookupID("event", id); err != nil {
		return nil, err
	}

	existing, err := s.repos.Event.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	if existing == nil {
		return nil, notFound("event", id)
	}
	if err := moderation.CheckEventStatus(existing, status); err != nil {
		return nil, err
	}
	if existing.Status == status {
		return existing, nil
	}

	updated, err := s.repos.Event.SetStatus(ctx, id, status)
	if err != nil {
		return nil, storeErr("set event status", err)
	}
	if updated == nil {
		return nil, notFound("event", id)
	}

	s.metrics.StatusChanged("event", string(status))
	s.log.Info().
		Str("event_id", id).
		Str("from", string(existing.Status)).
		Str("to", string(status)).
		Msg("Event status changed")
	return updated, nil
}

func (s *moderationService) DeleteEvent(ctx context.Context, id string) error {
	if err := lookupID("event", id); err != nil {
		return err
	}
	removed, err := s.repos.Event.Delete(ctx, id)
	if err != nil {
		return storeErr("delete event", err)
	}
	if !removed {
		return notFound("event", id)
	}
	s.log.Info().Str("event_id", id).Msg("Event deleted with its media and blessings")
	return nil
}

// Media

func (s *moderationService) CreateMedia(ctx context.Context, in *models.MediaInput) (*models.Media, error) {
	if err := s.validator.ValidateMediaInput(in); err != nil {
		return nil, err
	}
	if err := s.requireEvent(ctx, in.EventID); err != nil {
		return nil, err
	}

	visible := true
	if in.Visible != nil {
		visible = *in.Visible
	}

	media := &models.Media{
		ID:           uuid.NewString(),
		EventID:      in.EventID,
		Type:         models.MediaType(in.Type),
		FileURL:      in.FileURL,
		ThumbnailURL: in.ThumbnailURL,
		Title:        in.Title,
		Caption:      in.Caption,
		Tags:         models.NormalizeTags(in.Tags),
		Visible:      visible,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repos.Media.Create(ctx, media); err != nil {
		return nil, storeErr("create media", err)
	}

	s.log.Info().Str("media_id", media.ID).Str("event_id", media.EventID).Msg("Media created")
	return media, nil
}

func (s *moderationService) UpdateMedia(ctx context.Context, id string, in *models.MediaInput) (*models.Media, error) {
	if err := lookupID("media", id); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateMediaInput(in); err != nil {
		return nil, err
	}

	existing, err := s.repos.Media.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get media", err)
	}
	if existing == nil {
		return nil, notFound("media", id)
	}
	if in.EventID != existing.EventID {
		if err := s.requireEvent(ctx, in.EventID); err != nil {
			return nil, err
		}
	}

	existing.EventID = in.EventID
	existing.Type = models.MediaType(in.Type)
	existing.FileURL = in.FileURL
	existing.ThumbnailURL = in.ThumbnailURL
	existing.Title = in.Title
	existing.Caption = in.Caption
	existing.Tags = models.NormalizeTags(in.Tags)
	if in.Visible != nil {
		existing.Visible = *in.Visible
	}

	updated, err := s.repos.Media.Update(ctx, existing)
	if err != nil {
		return nil, storeErr("update media", err)
	}
	if updated == nil {
		return nil, notFound("media", id)
	}
	return updated, nil
}

func (s *moderationService) ToggleMediaVisibility(ctx context.Context, id string) (*models.Media, error) {
	if err := lookupID("media", id); err != nil {
		return nil, err
	}
	media, err := s.repos.Media.ToggleVisibility(ctx, id)
	if err != nil {
		return nil, storeErr("toggle media visibility", err)
	}
	if media == nil {
		return nil, notFound("media", id)
	}

	s.metrics.MediaToggled(media.Visible)
	s.log.Info().Str("media_id", id).Bool("visible", media.Visible).Msg("Media visibility toggled")
	return media, nil
}

func (s *moderationService) DeleteMedia(ctx context.Context, id string) error {
	if err := lookupID("media", id); err != nil {
		return err
	}
	removed, err := s.repos.Media.Delete(ctx, id)
	if err != nil {
		return storeErr("delete media", err)
	}
	if !removed {
		return notFound("media", id)
	}
	return nil
}

// Blessings

// SubmitBlessing stores a visitor's message as pending, whatever the
// caller may have intended
func (s *moderationService) SubmitBlessing(ctx context.Context, eventID string, in *models.BlessingSubmission) (*models.Blessing, error) {
	if err := s.validator.ValidateBlessingSubmission(in); err != nil {
		return nil, err
	}
	if err := lookupID("event", eventID); err != nil {
		return nil, err
	}

	event, err := s.repos.Event.GetByID(ctx, eventID)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	if event == nil {
		return nil, notFound("event", eventID)
	}

	blessing := &models.Blessing{
		ID:             uuid.NewString(),
		EventID:        eventID,
		AuthorName:     in.AuthorName,
		AuthorRelation: in.AuthorRelation,
		Text:           in.Text,
		MediaURL:       in.MediaURL,
		Status:         models.BlessingStatusPending,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.repos.Blessing.Create(ctx, blessing); err != nil {
		return nil, storeErr("create blessing", err)
	}
	blessing.EventTitle = event.Title

	s.metrics.BlessingSubmitted()
	s.log.Info().Str("blessing_id", blessing.ID).Str("event_id", eventID).Msg("Blessing submitted")
	return blessing, nil
}

func (s *moderationService) SetBlessingStatus(ctx context.Context, id string, status models.BlessingStatus) (*models.Blessing, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of: pending, approved, rejected", string(status))
	}
	if err := lookupID("blessing", id); err != nil {
		return nil, err
	}

	existing, err := s.repos.Blessing.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get blessing", err)
	}
	if existing == nil {
		return nil, notFound("blessing", id)
	}
	if err := moderation.CheckBlessingTransition(s.policy, existing.Status, status); err != nil {
		return nil, err
	}
	if existing.Status == status {
		return existing, nil
	}

	updated, err := s.repos.Blessing.SetStatus(ctx, id, status)
	if err != nil {
		return nil, storeErr("set blessing status", err)
	}
	if updated == nil {
		return nil, notFound("blessing", id)
	}

	s.metrics.StatusChanged("blessing", string(status))
	s.log.Info().
		Str("blessing_id", id).
		Str("from", string(existing.Status)).
		Str("to", string(status)).
		Msg("Blessing moderated")
	return updated, nil
}

func (s *moderationService) DeleteBlessing(ctx context.Context, id string) error {
	if err := lookupID("blessing", id); err != nil {
		return err
	}
	removed, err := s.repos.Blessing.Delete(ctx, id)
	if err != nil {
		return storeErr("delete blessing", err)
	}
	if !removed {
		return notFound("blessing", id)
	}
	return nil
}

func (s *moderationService) requireEvent(ctx context.Context, eventID string) error {
	exists, err := s.repos.Event.Exists(ctx, eventID)
	if err != nil {
		return storeErr("check event", err)
	}
	if !exists {
		return notFound("event", eventID)
	}
	return nil
}
