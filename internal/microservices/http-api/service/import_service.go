package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediahub/internal/auth"
	"mediahub/internal/catalog"
	"mediahub/internal/importer"
)

var ErrImportNotFound = errors.New("import job not found")

const finishedJobRetention = time.Hour

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
)

// ImportJob is the externally visible state of one import.
type ImportJob struct {
	ID         string            `json:"id"`
	Status     JobStatus         `json:"status"`
	Progress   importer.Progress `json:"progress"`
	Percent    float64           `json:"percent"`
	Estimate   string            `json:"estimate,omitempty"`
	Result     *importer.Result  `json:"result,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

type ImportService interface {
	Validate(text string) importer.Validation
	// Start parses text and imports it in the background.
	Start(ctx context.Context, session auth.Context, text string) (ImportJob, error)
	Get(session auth.Context, id string) (ImportJob, error)
	// Run imports text synchronously.
	Run(ctx context.Context, session auth.Context, text string, onProgress func(importer.Progress)) (*importer.Result, error)
}

type importJob struct {
	mu         sync.Mutex
	id         string
	owner      string
	progress   importer.Progress
	result     *importer.Result
	startedAt  time.Time
	finishedAt time.Time
}

type importService struct {
	library LibraryService
	catalog catalog.Searcher
	opts    importer.Options
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.Mutex
	jobs map[string]*importJob
}

func NewImportService(lib LibraryService, movies catalog.Searcher, opts importer.Options) ImportService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &importService{
		library: lib,
		catalog: movies,
		opts:    opts,
		logger:  opts.Logger,
		now:     time.Now,
		jobs:    make(map[string]*importJob),
	}
}

func (s *importService) Validate(text string) importer.Validation {
	return importer.ValidateCSV(text)
}

func (s *importService) prepare(session auth.Context, text string) (*importer.Importer, []importer.Entry, error) {
	entries, err := importer.ParseCSV(text)
	if err != nil {
		return nil, nil, err
	}
	store, err := s.library.RatedStore(session, catalog.KindMovie)
	if err != nil {
		return nil, nil, err
	}
	return importer.New(s.catalog, store, s.opts), entries, nil
}

func (s *importService) Run(ctx context.Context, session auth.Context, text string, onProgress func(importer.Progress)) (*importer.Result, error) {
	im, entries, err := s.prepare(session, text)
	if err != nil {
		return nil, err
	}
	return im.Run(ctx, entries, onProgress), nil
}

func (s *importService) Start(ctx context.Context, session auth.Context, text string) (ImportJob, error) {
	im, entries, err := s.prepare(session, text)
	if err != nil {
		return ImportJob{}, err
	}

	size := s.opts.Concurrency
	if size < 1 {
		size = importer.DefaultConcurrency
	}
	job := &importJob{
		id:        uuid.NewString(),
		owner:     session.UserID,
		startedAt: s.now(),
		progress: importer.Progress{
			Total:        len(entries),
			TotalBatches: len(importer.Chunk(entries, size)),
			Errors:       []string{},
		},
	}

	s.mu.Lock()
	s.pruneLocked()
	s.jobs[job.id] = job
	s.mu.Unlock()

	s.logger.Info("import_job_started", "job_id", job.id, "user_id", session.UserID, "entries", len(entries))

	// The job outlives the request that started it.
	runCtx := context.WithoutCancel(ctx)
	go func() {
		result := im.Run(runCtx, entries, func(p importer.Progress) {
			job.mu.Lock()
			job.progress = p
			job.mu.Unlock()
		})

		job.mu.Lock()
		job.result = result
		job.finishedAt = s.now()
		job.mu.Unlock()

		s.logger.Info("import_job_completed", "job_id", job.id, "successful", result.Successful, "failed", result.Failed)
	}()

	return s.snapshot(job), nil
}

func (s *importService) Get(session auth.Context, id string) (ImportJob, error) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok || job.owner != session.UserID {
		return ImportJob{}, ErrImportNotFound
	}
	return s.snapshot(job), nil
}

func (s *importService) snapshot(job *importJob) ImportJob {
	job.mu.Lock()
	defer job.mu.Unlock()

	out := ImportJob{
		ID:        job.id,
		Status:    JobRunning,
		Progress:  job.progress.Clone(),
		Percent:   job.progress.Percent(),
		StartedAt: job.startedAt,
	}
	if job.result != nil {
		finished := job.finishedAt
		out.Status = JobCompleted
		out.Result = job.result
		out.FinishedAt = &finished
		return out
	}
	out.Estimate = importer.FormatEstimate(job.progress, s.now().Sub(job.startedAt))
	return out
}

// pruneLocked drops jobs that finished long ago. s.mu must be held.
func (s *importService) pruneLocked() {
	cutoff := s.now().Add(-finishedJobRetention)
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.result != nil && job.finishedAt.Before(cutoff)
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}
