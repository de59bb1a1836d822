package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spotigrab/metrics"
	"spotigrab/types"
	"spotigrab/websocket"
)

// ErrQueueFull is returned when no more jobs can be buffered
var ErrQueueFull = errors.New("job queue is full")

const jobQueueBuffer = 100

// RequestDispatcher runs one raw reference to completion
type RequestDispatcher interface {
	Dispatch(ctx context.Context, raw string, progress ProgressFunc) (types.Result, error)
}

// JobQueue interface defines the methods for managing asynchronous download jobs
type JobQueue interface {
	Start(ctx context.Context)
	AddJob(query string) (types.DownloadJob, error)
	GetJob(id string) (types.DownloadJob, bool)
	GetAllJobs() []types.DownloadJob
	CancelJob(id string) bool
}

// jobQueue runs queued requests through the dispatcher on a fixed set of workers
type jobQueue struct {
	jobs       map[string]*types.DownloadJob
	queue      chan *types.DownloadJob
	mu         sync.RWMutex
	maxWorkers int
	dispatcher RequestDispatcher
	hub        websocket.Hub
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewJobQueue creates a new job queue. hub may be nil.
func NewJobQueue(maxWorkers int, dispatcher RequestDispatcher, hub websocket.Hub, m *metrics.Metrics, logger *zap.Logger) JobQueue {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &jobQueue{
		jobs:       make(map[string]*types.DownloadJob),
		queue:      make(chan *types.DownloadJob, jobQueueBuffer),
		maxWorkers: maxWorkers,
		dispatcher: dispatcher,
		hub:        hub,
		metrics:    m,
		logger:     logger,
	}
}

// AddJob classifies the query and queues it. Invalid references are rejected immediately.
func (jq *jobQueue) AddJob(query string) (types.DownloadJob, error) {
	ref := Classify(query)
	if ref.Kind == types.KindInvalid {
		return types.DownloadJob{}, fmt.Errorf("%w: %q", ErrInvalidInput, query)
	}

	jq.mu.Lock()
	defer jq.mu.Unlock()

	job := &types.DownloadJob{
		ID:        uuid.New().String(),
		Query:     query,
		Kind:      ref.Kind,
		Status:    types.JobStatusQueued,
		Total:     1,
		CreatedAt: time.Now(),
	}

	select {
	case jq.queue <- job:
	default:
		return types.DownloadJob{}, ErrQueueFull
	}
	jq.jobs[job.ID] = job
	return *job, nil
}

// GetJob returns a snapshot of a job by ID
func (jq *jobQueue) GetJob(id string) (types.DownloadJob, bool) {
	jq.mu.RLock()
	defer jq.mu.RUnlock()
	job, exists := jq.jobs[id]
	if !exists {
		return types.DownloadJob{}, false
	}
	return *job, true
}

// GetAllJobs returns snapshots of all jobs, oldest first
func (jq *jobQueue) GetAllJobs() []types.DownloadJob {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]types.DownloadJob, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs
}

// CancelJob cancels a job that has not started yet
func (jq *jobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, exists := jq.jobs[id]
	if !exists || job.Status != types.JobStatusQueued {
		return false
	}

	job.Status = types.JobStatusCancelled
	now := time.Now()
	job.CompletedAt = &now
	return true
}

// updateProgress records a finished track and notifies websocket subscribers
func (jq *jobQueue) updateProgress(id string, done, total int, outcome types.TrackOutcome) {
	jq.mu.Lock()
	job, exists := jq.jobs[id]
	if !exists {
		jq.mu.Unlock()
		return
	}
	job.Progress = done
	job.Total = total
	status := job.Status
	jq.mu.Unlock()

	current := outcome.FilePath
	if outcome.Status == types.StatusError {
		current = outcome.Message
	}
	jq.broadcast(types.ProgressMessage{
		JobID:       id,
		Type:        "progress",
		Progress:    float64(done) / float64(total) * 100,
		Status:      string(status),
		CurrentFile: current,
		Message:     fmt.Sprintf("Processed %d of %d tracks", done, total),
	})
}

// setStatus updates job status and broadcasts the transition
func (jq *jobQueue) setStatus(id string, status types.JobStatus, errorMsg string, result *types.Result) {
	jq.mu.Lock()
	job, exists := jq.jobs[id]
	if !exists {
		jq.mu.Unlock()
		return
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if result != nil {
		job.Result = result
	}

	now := time.Now()
	switch status {
	case types.JobStatusProcessing:
		job.StartedAt = &now
	case types.JobStatusCompleted, types.JobStatusFailed, types.JobStatusCancelled:
		job.CompletedAt = &now
	}
	progress := float64(job.Progress) / float64(job.Total) * 100
	query := job.Query
	jq.mu.Unlock()

	msg := types.ProgressMessage{
		JobID:    id,
		Type:     "status",
		Progress: progress,
		Status:   string(status),
		Message:  string(status),
	}
	switch status {
	case types.JobStatusCompleted:
		msg.Type = "complete"
		msg.Progress = 100
		msg.Message = fmt.Sprintf("%s download completed", query)
	case types.JobStatusFailed:
		msg.Type = "error"
		msg.Message = errorMsg
	case types.JobStatusProcessing:
		msg.Message = fmt.Sprintf("Started downloading %s", query)
	}
	jq.broadcast(msg)
}

func (jq *jobQueue) broadcast(msg types.ProgressMessage) {
	if jq.hub == nil {
		return
	}
	msg.Timestamp = time.Now()
	jq.hub.Broadcast(msg)
}

// Start launches the workers; they exit when ctx is done
func (jq *jobQueue) Start(ctx context.Context) {
	for i := 0; i < jq.maxWorkers; i++ {
		go jq.worker(ctx)
	}
}

// worker processes jobs from the queue
func (jq *jobQueue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-jq.queue:
			jq.process(ctx, job)
		}
	}
}

func (jq *jobQueue) process(ctx context.Context, job *types.DownloadJob) {
	if current, ok := jq.GetJob(job.ID); !ok || current.Status == types.JobStatusCancelled {
		return
	}

	jq.metrics.JobStarted()
	defer jq.metrics.JobFinished()

	jq.setStatus(job.ID, types.JobStatusProcessing, "", nil)

	result, err := jq.dispatcher.Dispatch(ctx, job.Query, func(done, total int, outcome types.TrackOutcome) {
		jq.updateProgress(job.ID, done, total, outcome)
	})
	if err != nil {
		jq.setStatus(job.ID, types.JobStatusFailed, err.Error(), nil)
		jq.logger.Warn("job failed", zap.String("job", job.ID), zap.Error(err))
		return
	}

	if msg := resultError(result); msg != "" {
		jq.setStatus(job.ID, types.JobStatusFailed, msg, &result)
		jq.logger.Warn("job failed", zap.String("job", job.ID), zap.String("message", msg))
		return
	}

	jq.setStatus(job.ID, types.JobStatusCompleted, "", &result)
	jq.logger.Info("job completed", zap.String("job", job.ID))
}

// resultError returns the failure message of a request that produced nothing usable
func resultError(r types.Result) string {
	switch {
	case r.Track != nil && r.Track.Status == types.StatusError:
		return r.Track.Message
	case r.Batch != nil && r.Batch.Status == types.StatusError:
		return r.Batch.Message
	}
	return ""
}
