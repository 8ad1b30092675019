package models

import (
	"time"
)

// JobStatus represents the status of an ingest job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IngestJob is a queued bulk import of one external folder into one event
type IngestJob struct {
	ID             string     `json:"job_id" db:"id"`
	EventID        string     `json:"event_id" db:"event_id"`
	FolderID       string     `json:"folder_id" db:"folder_id"`
	Status         JobStatus  `json:"status" db:"status"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	TotalFiles     int        `json:"total_files" db:"total_files"`
	ImportedCount  int        `json:"imported" db:"imported_count"`
	SkippedCount   int        `json:"skipped" db:"skipped_count"`
	DurationMs     int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	ErrorMessage   string     `json:"error,omitempty" db:"error_message"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// SkippedFile is an external file that did not become a media row
type SkippedFile struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Reason   string `json:"reason"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	IngestJob
	Skipped       []SkippedFile `json:"skipped_files,omitempty"`
	SkippedReport string        `json:"skipped_report_url,omitempty"`
}

// IngestRequest asks for a folder import into an existing event
type IngestRequest struct {
	EventID        string `json:"event_id" binding:"required"`
	FolderID       string `json:"folder_id" binding:"required"`
	IdempotencyKey string `json:"-"`
}

// FolderEventRequest creates an event from an external folder
type FolderEventRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date" binding:"required"`
	FolderID string `json:"folder_id" binding:"required"`
}

// IngestResult is the outcome of a synchronous folder import or preview
type IngestResult struct {
	EventID       string        `json:"event_id"`
	FolderID      string        `json:"folder_id"`
	Media         []*Media      `json:"media"`
	Skipped       []SkippedFile `json:"skipped"`
	Committed     bool          `json:"committed"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// Stats holds row counts for the admin dashboard
type Stats struct {
	Events    map[EventStatus]int    `json:"events"`
	Blessings map[BlessingStatus]int `json:"blessings"`
	Media     int                    `json:"media"`
}
