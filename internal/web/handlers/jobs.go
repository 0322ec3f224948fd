package handlers

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Archiver files a recognized photo in the external archive.
type Archiver interface {
	Store(ctx context.Context, path, name string) error
}

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
)

// ArchiveJob tracks one background photo upload.
type ArchiveJob struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	path string
}

// ArchiveQueue runs photo uploads in the background so recognition
// responses do not wait on the archive. The staged temp file is removed
// once the job finishes, whatever the outcome.
type ArchiveQueue struct {
	mu       sync.RWMutex
	archiver Archiver
	timeout  time.Duration
	jobs     map[string]*ArchiveJob
	wg       sync.WaitGroup
}

// NewArchiveQueue creates a queue. A nil archiver is allowed; jobs then
// only clean up their temp file and are marked skipped.
func NewArchiveQueue(archiver Archiver) *ArchiveQueue {
	return &ArchiveQueue{
		archiver: archiver,
		timeout:  2 * time.Minute,
		jobs:     map[string]*ArchiveJob{},
	}
}

// Enqueue schedules the photo at path for upload under the given name
// and returns immediately. The queue owns the file from here on.
func (q *ArchiveQueue) Enqueue(path, name string) *ArchiveJob {
	job := &ArchiveJob{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		path:      path,
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.mu.Unlock()

	q.wg.Add(1)
	go q.run(job)
	return job
}

func (q *ArchiveQueue) run(job *ArchiveJob) {
	defer q.wg.Done()
	defer func() {
		if err := os.Remove(job.path); err != nil && !os.IsNotExist(err) {
			log.Printf("could not remove temp photo %s: %v", job.path, err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("archive job %s panicked: %v", job.ID, r)
			q.finish(job, JobStatusFailed, "internal error")
		}
	}()

	if q.archiver == nil {
		q.finish(job, JobStatusSkipped, "")
		return
	}

	q.setStatus(job, JobStatusRunning)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.archiver.Store(ctx, job.path, job.Name); err != nil {
		log.Printf("could not archive photo %s: %v", job.Name, err)
		q.finish(job, JobStatusFailed, err.Error())
		return
	}
	q.finish(job, JobStatusCompleted, "")
}

func (q *ArchiveQueue) setStatus(job *ArchiveJob, status JobStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Status = status
}

func (q *ArchiveQueue) finish(job *ArchiveJob, status JobStatus, errMsg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	job.Status = status
	job.Error = errMsg
	job.CompletedAt = &now
}

// Job returns a copy of the job or nil when the id is unknown.
func (q *ArchiveQueue) Job(id string) *ArchiveJob {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

// Jobs returns copies of all tracked jobs.
func (q *ArchiveQueue) Jobs() []ArchiveJob {
	q.mu.RLock()
	defer q.mu.RUnlock()
	jobs := make([]ArchiveJob, 0, len(q.jobs))
	for _, job := range q.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Wait blocks until all scheduled jobs have finished. Used by shutdown
// and tests.
func (q *ArchiveQueue) Wait() {
	q.wg.Wait()
}
