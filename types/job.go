package types

import "time"

// JobStatus represents the current status of a download job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// DownloadJob represents an asynchronous download request in the queue
type DownloadJob struct {
	ID          string        `json:"id"`
	Query       string        `json:"query"`
	Kind        ReferenceKind `json:"kind"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Error       string        `json:"error,omitempty"`
	Result      *Result       `json:"result,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}
