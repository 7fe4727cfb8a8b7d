// Package consumer pulls task jobs from Kafka and dispatches them to a
// bounded worker pool.
package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"image-resizer/internal/config"
	"image-resizer/internal/workerpool"
)

// jobHandler defines the interface for handling fetched job messages.
type jobHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// Consumer fetches job messages and hands them to the worker pool. Offsets
// are committed after handling, so delivery is at-least-once; the task
// lifecycle tolerates duplicates.
type Consumer struct {
	Client     *wbfkafka.Consumer
	jobHandler jobHandler
	pool       *workerpool.Pool
	cfg        *config.Kafka
	strategy   retry.Strategy
}

// New creates a new Consumer.
// - cfg: Kafka configuration struct
// - s: retry strategy for fetch/commit and job handling
// - h: handler for processing job messages
// - workers: maximum number of jobs processed concurrently
func New(cfg *config.Kafka, s retry.Strategy, h jobHandler, workers int) *Consumer {
	consumer := wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID)

	return &Consumer{
		Client:     consumer,
		jobHandler: h,
		pool:       workerpool.New(workers),
		cfg:        cfg,
		strategy:   s,
	}
}

// Consume continuously fetches messages from Kafka and submits them to the
// worker pool. It stops gracefully on context cancellation, waiting for
// in-flight jobs to finish.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer c.pool.Wait()

	zlog.Logger.Info().
		Str("topic", c.cfg.Topic).
		Msg("starting consumer")

	for {
		// Exit if context is canceled (graceful shutdown).
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		// Fetch a message from Kafka with retries.
		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.Client.Fetch(ctx)
			return fetchErr
		}, c.strategy)

		if err != nil {
			if ctx.Err() != nil {
				continue
			}

			zlog.Logger.Err(err).Msg("failed to fetch message")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		c.pool.Submit(ctx, func(jobCtx context.Context) {
			c.handle(jobCtx, msg)
		})
	}
}

// handle runs one message through the job handler with backoff retries and
// commits the offset. Exhausted retries are logged and the offset is still
// committed: the failure has been recorded on the task itself.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	err := retry.Do(func() error {
		return c.jobHandler.Handle(ctx, msg)
	}, c.strategy)
	if err != nil {
		zlog.Logger.Err(err).
			Str("message", string(msg.Value)).
			Msg("job failed after retries")
	}

	err = retry.Do(func() error {
		return c.Client.Commit(ctx, msg)
	}, c.strategy)
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to commit message after retries")
		return
	}

	zlog.Logger.Info().
		Int64("offset", msg.Offset).
		Msg("message handled")
}
