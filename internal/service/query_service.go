package service

import (
	"context"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/moderation"
	"github.com/event-gallery-api/internal/repository"
	"github.com/event-gallery-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	defaultRecentBlessings = 6
	maxRecentBlessings     = 50
)

// queryService is the concrete implementation of QueryService. Public reads
// re-apply the moderation predicates to whatever the store returned.
type queryService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newQueryService creates a new QueryService
func newQueryService(repos *repository.Repositories, log zerolog.Logger) *queryService {
	return &queryService{
		repos: repos,
		log:   log.With().Str("service", "query").Logger(),
	}
}

func (s *queryService) ListPublishedEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.repos.Event.ListByStatus(ctx, models.EventStatusPublished)
	if err != nil {
		return nil, storeErr("list published events", err)
	}

	out := make([]*models.Event, 0, len(events))
	for _, e := range events {
		if moderation.EventPublic(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetPublishedEvent treats drafts exactly like missing events
func (s *queryService) GetPublishedEvent(ctx context.Context, id string) (*models.Event, error) {
	if err := lookupID("event", id); err != nil {
		return nil, err
	}
	event, err := s.repos.Event.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	if !moderation.EventPublic(event) {
		return nil, notFound("event", id)
	}
	return event, nil
}

func (s *queryService) ListPublicMedia(ctx context.Context, eventID string) ([]*models.Media, error) {
	event, err := s.GetPublishedEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Media.ListPublic(ctx, eventID)
	if err != nil {
		return nil, storeErr("list public media", err)
	}
	return moderation.FilterMedia(items, event), nil
}

// ListApprovedBlessings fetches the approved guestbook and filters it
// in-process by search term
func (s *queryService) ListApprovedBlessings(ctx context.Context, eventID, search string) ([]*models.Blessing, error) {
	if _, err := s.GetPublishedEvent(ctx, eventID); err != nil {
		return nil, err
	}
	blessings, err := s.repos.Blessing.ListApproved(ctx, eventID)
	if err != nil {
		return nil, storeErr("list approved blessings", err)
	}
	return moderation.FilterBlessings(blessings, search), nil
}

func (s *queryService) RecentBlessings(ctx context.Context, limit int) ([]*models.Blessing, error) {
	if limit <= 0 {
		limit = defaultRecentBlessings
	}
	if limit > maxRecentBlessings {
		limit = maxRecentBlessings
	}
	blessings, err := s.repos.Blessing.Recent(ctx, limit)
	if err != nil {
		return nil, storeErr("list recent blessings", err)
	}
	return moderation.FilterBlessings(blessings, ""), nil
}

func (s *queryService) AdminEvents(ctx context.Context) (*models.EventBuckets, error) {
	events, err := s.repos.Event.List(ctx)
	if err != nil {
		return nil, storeErr("list events", err)
	}

	buckets := &models.EventBuckets{Draft: []*models.Event{}, Published: []*models.Event{}}
	for _, e := range events {
		if e.Status == models.EventStatusPublished {
			buckets.Published = append(buckets.Published, e)
		} else {
			buckets.Draft = append(buckets.Draft, e)
		}
	}
	return buckets, nil
}

func (s *queryService) AdminMedia(ctx context.Context, eventID string) (*models.MediaBuckets, error) {
	if eventID != "" && !validation.IsValidID(eventID) {
		return nil, models.NewValidationError("event_id", "invalid UUID format", eventID)
	}
	items, err := s.repos.Media.List(ctx, eventID)
	if err != nil {
		return nil, storeErr("list media", err)
	}

	buckets := &models.MediaBuckets{Visible: []*models.Media{}, Hidden: []*models.Media{}}
	for _, m := range items {
		if m.Visible {
			buckets.Visible = append(buckets.Visible, m)
		} else {
			buckets.Hidden = append(buckets.Hidden, m)
		}
	}
	return buckets, nil
}

func (s *queryService) AdminBlessings(ctx context.Context, eventID string) (*models.BlessingBuckets, error) {
	if eventID != "" && !validation.IsValidID(eventID) {
		return nil, models.NewValidationError("event_id", "invalid UUID format", eventID)
	}
	blessings, err := s.repos.Blessing.List(ctx, eventID)
	if err != nil {
		return nil, storeErr("list blessings", err)
	}

	buckets := &models.BlessingBuckets{
		Pending:  []*models.Blessing{},
		Approved: []*models.Blessing{},
		Rejected: []*models.Blessing{},
	}
	for _, b := range blessings {
		switch b.Status {
		case models.BlessingStatusApproved:
			buckets.Approved = append(buckets.Approved, b)
		case models.BlessingStatusRejected:
			buckets.Rejected = append(buckets.Rejected, b)
		default:
			buckets.Pending = append(buckets.Pending, b)
		}
	}
	return buckets, nil
}

func (s *queryService) Stats(ctx context.Context) (*models.Stats, error) {
	events, err := s.repos.Event.CountByStatus(ctx)
	if err != nil {
		return nil, storeErr("count events", err)
	}
	blessings, err := s.repos.Blessing.CountByStatus(ctx)
	if err != nil {
		return nil, storeErr("count blessings", err)
	}
	media, err := s.repos.Media.Count(ctx)
	if err != nil {
		return nil, storeErr("count media", err)
	}
	return &models.Stats{Events: events, Blessings: blessings, Media: media}, nil
}
