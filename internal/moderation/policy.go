// Package moderation holds the publication state machines and the public
// visibility rules shared by every read path.
package moderation

import (
	"fmt"

	"github.com/event-gallery-api/internal/config"
	"github.com/event-gallery-api/internal/models"
)

// BlessingPolicy decides which blessing status changes are permitted
type BlessingPolicy interface {
	Name() string
	Allow(from, to models.BlessingStatus) bool
}

// OpenPolicy permits any status change, including reversals
type OpenPolicy struct{}

func (OpenPolicy) Name() string { return config.BlessingPolicyOpen }

func (OpenPolicy) Allow(from, to models.BlessingStatus) bool {
	return from.Valid() && to.Valid()
}

// StrictPolicy only permits the moderation edges an editor normally takes.
// Re-applying the current status is always allowed.
type StrictPolicy struct{}

var strictEdges = map[models.BlessingStatus][]models.BlessingStatus{
	models.BlessingStatusPending:  {models.BlessingStatusApproved, models.BlessingStatusRejected},
	models.BlessingStatusRejected: {models.BlessingStatusApproved},
}

func (StrictPolicy) Name() string { return config.BlessingPolicyStrict }

func (StrictPolicy) Allow(from, to models.BlessingStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range strictEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PolicyFor maps a configured policy name to its implementation
func PolicyFor(name string) (BlessingPolicy, error) {
	switch name {
	case "", config.BlessingPolicyOpen:
		return OpenPolicy{}, nil
	case config.BlessingPolicyStrict:
		return StrictPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown blessing policy %q", name)
}

// CheckBlessingTransition returns ErrInvalidTransition when p forbids from -> to
func CheckBlessingTransition(p BlessingPolicy, from, to models.BlessingStatus) error {
	if p.Allow(from, to) {
		return nil
	}
	return fmt.Errorf("%w: blessing %s -> %s not allowed by %s policy",
		models.ErrInvalidTransition, from, to, p.Name())
}

// CheckEventStatus validates a target event status against the event's
// current fields. Publishing requires a title and a date.
func CheckEventStatus(event *models.Event, to models.EventStatus) error {
	if !to.Valid() {
		return models.NewValidationError("status", "must be draft or published", string(to))
	}
	if to == models.EventStatusPublished && !event.Publishable() {
		return models.NewValidationError("status", "title and date are required to publish", string(to))
	}
	return nil
}
