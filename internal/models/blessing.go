package models

import (
	"strings"
	"time"
)

// BlessingStatus is the moderation state of a guestbook entry
type BlessingStatus string

const (
	BlessingStatusPending  BlessingStatus = "pending"
	BlessingStatusApproved BlessingStatus = "approved"
	BlessingStatusRejected BlessingStatus = "rejected"
)

// Valid reports whether s is a known blessing status
func (s BlessingStatus) Valid() bool {
	switch s {
	case BlessingStatusPending, BlessingStatusApproved, BlessingStatusRejected:
		return true
	}
	return false
}

// Blessing is a visitor-submitted guestbook message
type Blessing struct {
	ID             string         `json:"id" db:"id"`
	EventID        string         `json:"event_id" db:"event_id"`
	EventTitle     string         `json:"event_title,omitempty" db:"-"`
	AuthorName     string         `json:"author_name" db:"author_name"`
	AuthorRelation string         `json:"author_relation,omitempty" db:"author_relation"`
	Text           string         `json:"text" db:"text"`
	MediaURL       string         `json:"media_url,omitempty" db:"media_url"`
	Status         BlessingStatus `json:"status" db:"status"`
	SubmittedAt    time.Time      `json:"submitted_at" db:"submitted_at"`
}

// BlessingSubmission is the public guestbook form. There is no status field:
// every submission starts pending.
type BlessingSubmission struct {
	AuthorName     string `json:"author_name" validate:"required"`
	AuthorRelation string `json:"author_relation"`
	Text           string `json:"text" validate:"required"`
	MediaURL       string `json:"media_url" validate:"omitempty,httpurl"`
}

// BlessingStatusRequest is the payload for a moderation decision
type BlessingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BlessingBuckets groups blessings by status for the admin view
type BlessingBuckets struct {
	Pending  []*Blessing `json:"pending"`
	Approved []*Blessing `json:"approved"`
	Rejected []*Blessing `json:"rejected"`
}

// MatchesSearch reports whether term occurs, case-insensitively, in the
// author name, text or relation. An empty term matches everything.
func (b *Blessing) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.AuthorName), term) ||
		strings.Contains(strings.ToLower(b.Text), term) ||
		strings.Contains(strings.ToLower(b.AuthorRelation), term)
}
