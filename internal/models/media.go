package models

import (
	"strings"
	"time"
)

// MediaType is the kind of an externally hosted media item
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Valid reports whether t is a known media type
func (t MediaType) Valid() bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// Media is one externally hosted image or video belonging to an event.
// Only URLs are stored, never the bytes.
type Media struct {
	ID           string    `json:"id" db:"id"`
	EventID      string    `json:"event_id" db:"event_id"`
	Type         MediaType `json:"type" db:"type"`
	FileURL      string    `json:"file_url" db:"file_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Title        string    `json:"title,omitempty" db:"title"`
	Caption      string    `json:"caption,omitempty" db:"caption"`
	Tags         []string  `json:"tags" db:"tags"`
	Visible      bool      `json:"visible" db:"visible"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// MediaInput is the admin create/edit payload for a media item
type MediaInput struct {
	EventID      string   `json:"event_id" validate:"required"`
	Type         string   `json:"type" validate:"required"`
	FileURL      string   `json:"file_url" validate:"required,httpurl"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,httpurl"`
	Title        string   `json:"title"`
	Caption      string   `json:"caption"`
	Tags         []string `json:"tags"`
	Visible      *bool    `json:"visible"`
}

// MediaBuckets groups media by visibility for the admin view
type MediaBuckets struct {
	Visible []*Media `json:"visible"`
	Hidden  []*Media `json:"hidden"`
}

// NormalizeTags trims labels and drops blanks and duplicates, keeping first-seen order
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
