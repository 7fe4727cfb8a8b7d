package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProcessedImage is a single transformation result: the target width as a
// string and the relative, forward-slash output path.
type ProcessedImage struct {
	Resolution string `json:"resolution"`
	Path       string `json:"path"`
}

// Task is the aggregate tracking one image-processing request. It is
// immutable: Complete and Fail return a new Task value, the caller persists it.
type Task struct {
	id          uuid.UUID
	status      Status
	price       Price
	originalRef string
	images      []ProcessedImage
	errMessage  string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTask creates a pending task for the given source reference (URL or path).
func NewTask(originalRef string) (Task, error) {
	ref := strings.TrimSpace(originalRef)
	if ref == "" {
		return Task{}, fmt.Errorf("%w: original reference is empty", ErrInvalidArgument)
	}

	now := time.Now().UTC()

	return Task{
		id:          uuid.New(),
		status:      StatusPending,
		price:       NewPrice(),
		originalRef: ref,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// RestoreTask rehydrates a task from persisted state, re-validating invariants.
func RestoreTask(
	id uuid.UUID,
	status Status,
	price Price,
	originalRef string,
	images []ProcessedImage,
	errMessage string,
	createdAt, updatedAt time.Time,
) (Task, error) {
	if id == uuid.Nil {
		return Task{}, fmt.Errorf("%w: task id is empty", ErrInvalidArgument)
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return Task{}, err
	}
	if strings.TrimSpace(originalRef) == "" {
		return Task{}, fmt.Errorf("%w: original reference is empty", ErrInvalidArgument)
	}
	if status == StatusCompleted && len(images) == 0 {
		return Task{}, fmt.Errorf("%w: completed task without images", ErrInvalidArgument)
	}
	if status == StatusFailed && strings.TrimSpace(errMessage) == "" {
		return Task{}, fmt.Errorf("%w: failed task without error message", ErrInvalidArgument)
	}

	return Task{
		id:          id,
		status:      status,
		price:       price,
		originalRef: originalRef,
		images:      copyImages(images),
		errMessage:  errMessage,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// Complete transitions the task to completed with the given results.
// Completing an already-completed task is a no-op returning the same state.
func (t Task) Complete(images []ProcessedImage) (Task, error) {
	if len(images) == 0 {
		return Task{}, fmt.Errorf("%w: images list is empty", ErrInvalidArgument)
	}
	for i, img := range images {
		if img.Resolution == "" || img.Path == "" {
			return Task{}, fmt.Errorf("%w: image %d is missing resolution or path", ErrInvalidArgument, i)
		}
	}

	if t.status == StatusCompleted {
		return t, nil
	}
	if !t.status.canTransition(StatusCompleted) {
		return Task{}, transitionError(t.status, StatusCompleted)
	}

	next := t
	next.status = StatusCompleted
	next.images = copyImages(images)
	next.errMessage = ""
	next.updatedAt = time.Now().UTC()

	return next, nil
}

// Fail transitions the task to failed with the given message.
// Failing an already-failed task is idempotent.
func (t Task) Fail(message string) (Task, error) {
	if strings.TrimSpace(message) == "" {
		return Task{}, fmt.Errorf("%w: error message is empty", ErrInvalidArgument)
	}

	if t.status == StatusFailed {
		return t, nil
	}
	if !t.status.canTransition(StatusFailed) {
		return Task{}, transitionError(t.status, StatusFailed)
	}

	next := t
	next.status = StatusFailed
	next.errMessage = message
	next.updatedAt = time.Now().UTC()

	return next, nil
}

func (t Task) ID() uuid.UUID             { return t.id }
func (t Task) Status() Status            { return t.status }
func (t Task) Price() Price              { return t.price }
func (t Task) OriginalReference() string { return t.originalRef }
func (t Task) ErrorMessage() string      { return t.errMessage }
func (t Task) CreatedAt() time.Time      { return t.createdAt }
func (t Task) UpdatedAt() time.Time      { return t.updatedAt }

// Images returns a copy of the result list so callers cannot mutate the aggregate.
func (t Task) Images() []ProcessedImage {
	return copyImages(t.images)
}

func copyImages(images []ProcessedImage) []ProcessedImage {
	if len(images) == 0 {
		return nil
	}

	out := make([]ProcessedImage, len(images))
	copy(out, images)

	return out
}
