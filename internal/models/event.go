package models

import (
	"time"
)

// EventStatus is the publication state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	return s == EventStatusDraft || s == EventStatusPublished
}

// Event is a single occasion with its own page, gallery, story and guestbook
type Event struct {
	ID               string      `json:"id" db:"id"`
	Title            string      `json:"title" db:"title"`
	Date             Date        `json:"date" db:"date"`
	Location         string      `json:"location,omitempty" db:"location"`
	CoverImageURL    string      `json:"cover_image_url,omitempty" db:"cover_image_url"`
	DescriptionShort string      `json:"description_short,omitempty" db:"description_short"`
	DescriptionFull  string      `json:"description_full,omitempty" db:"description_full"`
	Status           EventStatus `json:"status" db:"status"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// Publishable reports whether the fields required for publication are set
func (e *Event) Publishable() bool {
	return e.Title != "" && !e.Date.IsZero()
}

// EventInput is the admin create/edit payload for an event
type EventInput struct {
	Title            string `json:"title" validate:"required"`
	Date             string `json:"date" validate:"required"`
	Location         string `json:"location"`
	CoverImageURL    string `json:"cover_image_url" validate:"omitempty,httpurl"`
	DescriptionShort string `json:"description_short"`
	DescriptionFull  string `json:"description_full"`
	Status           string `json:"status"`
}

// EventStatusRequest is the payload for a status change
type EventStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// EventBuckets groups events by status for the admin view
type EventBuckets struct {
	Draft     []*Event `json:"draft"`
	Published []*Event `json:"published"`
}
