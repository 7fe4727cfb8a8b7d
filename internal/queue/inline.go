// Package queue provides a synchronous in-process job transport for
// deployments that run without a broker. It satisfies the same enqueue
// contract as the Kafka producer, including retry with backoff.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/retry"

	"image-resizer/internal/model"
)

var ErrNoHandler = errors.New("inline queue has no handler")

// Handler processes one job.
type Handler func(ctx context.Context, job model.Job) error

// Inline executes jobs immediately on the caller's goroutine. The handler is
// bound after construction because the service holding it also needs the
// queue to enqueue into.
type Inline struct {
	handler  Handler
	strategy retry.Strategy
}

// NewInline creates an inline queue using the given retry strategy.
func NewInline(s retry.Strategy) *Inline {
	return &Inline{strategy: s}
}

// SetHandler binds the job handler. Must be called before the first Enqueue.
func (q *Inline) SetHandler(h Handler) {
	q.handler = h
}

// Enqueue runs the job through the handler with backoff retries.
func (q *Inline) Enqueue(ctx context.Context, job model.Job) error {
	if q.handler == nil {
		return ErrNoHandler
	}

	err := retry.Do(func() error {
		return q.handler(ctx, job)
	}, q.strategy)
	if err != nil {
		return fmt.Errorf("inline job %s: %w", job.TaskID, err)
	}

	return nil
}
