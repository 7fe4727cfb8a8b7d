// Package task implements the task lifecycle: submission, status queries and
// job processing on the worker side.
package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"image-resizer/internal/model"
)

// targetWidths is the fixed set of output resolutions. Clients cannot choose
// their own; every task is resized to these widths in this order.
var targetWidths = []int{1024, 800}

// repository defines the persistence interface for tasks.
type repository interface {
	SaveTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (model.Task, error)
}

// enqueuer defines the interface for handing a job to the queue transport.
type enqueuer interface {
	Enqueue(ctx context.Context, job model.Job) error
}

// sourceFetcher resolves a URL into bytes plus a suggested filename.
type sourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// engine is the transformation engine interface.
type engine interface {
	Process(ctx context.Context, data []byte, originalFilename string, widths []int) ([]model.ProcessedImage, error)
	ProcessFile(ctx context.Context, path string, widths []int) ([]model.ProcessedImage, error)
}

// Service wires the task aggregate to the queue, fetcher and engine.
type Service struct {
	repo    repository
	queue   enqueuer
	fetcher sourceFetcher
	engine  engine
}

// NewService creates a new Service.
func NewService(repo repository, queue enqueuer, fetcher sourceFetcher, eng engine) *Service {
	return &Service{repo: repo, queue: queue, fetcher: fetcher, engine: eng}
}

// Submit creates a pending task for the given source reference, persists it
// and enqueues its processing job.
func (s *Service) Submit(ctx context.Context, originalRef string) (model.Task, error) {
	t, err := model.NewTask(originalRef)
	if err != nil {
		return model.Task{}, err
	}

	if err := s.repo.SaveTask(ctx, t); err != nil {
		return model.Task{}, fmt.Errorf("submit: failed to save task: %w", err)
	}

	job, err := model.NewJob(t.ID(), model.ReferenceSource(t.OriginalReference()), "")
	if err != nil {
		return model.Task{}, fmt.Errorf("submit: failed to build job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		return model.Task{}, fmt.Errorf("submit: failed to enqueue job: %w", err)
	}

	zlog.Logger.Info().
		Str("task_id", t.ID().String()).
		Str("reference", t.OriginalReference()).
		Msg("task submitted")

	return t, nil
}

// GetStatus loads the current state of a task.
func (s *Service) GetStatus(ctx context.Context, id uuid.UUID) (model.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// ProcessJob runs one queue job through the engine and moves the task to a
// terminal state. Engine and fetcher failures become a fail transition, never
// an error: returning an error from here means the delivery should be retried.
func (s *Service) ProcessJob(ctx context.Context, job model.Job) error {
	t, err := s.repo.GetTask(ctx, job.TaskID)
	if err != nil {
		return fmt.Errorf("process: failed to load task %s: %w", job.TaskID, err)
	}

	// Duplicate delivery of the same job is legal; a non-pending task has
	// already been handled, so there is nothing to do.
	if t.Status() != model.StatusPending {
		zlog.Logger.Info().
			Str("task_id", t.ID().String()).
			Str("status", string(t.Status())).
			Msg("task already processed, skipping")
		return nil
	}

	images, procErr := s.transform(ctx, job)
	if procErr == nil && len(images) == 0 {
		procErr = fmt.Errorf("engine produced no images")
	}

	if procErr != nil {
		zlog.Logger.Warn().
			Err(procErr).
			Str("task_id", t.ID().String()).
			Msg("processing failed")

		failed, err := t.Fail(procErr.Error())
		if err != nil {
			return fmt.Errorf("process: failed to mark task failed: %w", err)
		}

		if err := s.repo.SaveTask(ctx, failed); err != nil {
			return fmt.Errorf("process: failed to save failed task: %w", err)
		}

		return nil
	}

	completed, err := t.Complete(images)
	if err != nil {
		return fmt.Errorf("process: failed to complete task: %w", err)
	}

	if err := s.repo.SaveTask(ctx, completed); err != nil {
		return fmt.Errorf("process: failed to save completed task: %w", err)
	}

	zlog.Logger.Info().
		Str("task_id", t.ID().String()).
		Int("images", len(images)).
		Msg("task completed")

	return nil
}

// transform resolves the job source and runs the engine on it.
func (s *Service) transform(ctx context.Context, job model.Job) ([]model.ProcessedImage, error) {
	switch job.Source.Kind() {
	case model.SourceInline:
		return s.engine.Process(ctx, job.Source.Bytes(), job.Filename, targetWidths)

	case model.SourceReference:
		ref := job.Source.Reference()
		if !isRemote(ref) {
			return s.engine.ProcessFile(ctx, ref, targetWidths)
		}

		data, suggested, err := s.fetcher.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}

		filename := job.Filename
		if filename == "" {
			filename = suggested
		}

		return s.engine.Process(ctx, data, filename, targetWidths)

	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", model.ErrInvalidArgument, job.Source.Kind())
	}
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
