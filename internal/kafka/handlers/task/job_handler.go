// Package task decodes queue messages and feeds them to the task service.
package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"image-resizer/internal/model"
)

// service defines the interface for processing decoded jobs.
type service interface {
	ProcessJob(ctx context.Context, job model.Job) error
}

// JobHandler handles Kafka messages carrying task jobs.
type JobHandler struct {
	service service
}

// NewJobHandler creates a new handler with the given service.
func NewJobHandler(s service) *JobHandler {
	return &JobHandler{service: s}
}

// Handle unmarshals a job message and runs it through the service.
func (h *JobHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var job model.Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return fmt.Errorf("unmarshal job: %w", err)
	}

	if err := h.service.ProcessJob(ctx, job); err != nil {
		return fmt.Errorf("process job %s: %w", job.TaskID, err)
	}

	return nil
}
