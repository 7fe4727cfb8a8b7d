// Package task provides HTTP handlers for task submission and status queries.
package task

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"image-resizer/internal/api/respond"
	"image-resizer/internal/model"
	taskrepo "image-resizer/internal/repository/task"
)

// service defines the interface for task-related operations.
type service interface {
	Submit(ctx context.Context, originalRef string) (model.Task, error)
	GetStatus(ctx context.Context, id uuid.UUID) (model.Task, error)
}

// Handler provides HTTP handlers for task endpoints.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// CreateRequest is the submission payload: a URL or server-side path of the
// source image.
type CreateRequest struct {
	URL string `json:"url"`
}

// Response is the task representation returned to clients.
type Response struct {
	TaskID       string                 `json:"task_id"`
	Status       string                 `json:"status"`
	Price        float64                `json:"price"`
	Images       []model.ProcessedImage `json:"images,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

func toResponse(t model.Task) Response {
	return Response{
		TaskID:       t.ID().String(),
		Status:       string(t.Status()),
		Price:        t.Price().Value(),
		Images:       t.Images(),
		ErrorMessage: t.ErrorMessage(),
	}
}

// Create handles task submission: it creates a pending task and enqueues its
// processing job.
func (h *Handler) Create(c *ginext.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("malformed create request")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	t, err := h.service.Submit(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, model.ErrInvalidArgument) {
			respond.Fail(c, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Err(err).Msg("failed to submit task")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to submit task"))
		return
	}

	respond.Created(c, toResponse(t))
}

// Get returns the current status of a task.
func (h *Handler) Get(c *ginext.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid task id"))
		return
	}

	t, err := h.service.GetStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, taskrepo.ErrTaskNotFound) {
			respond.Fail(c, http.StatusNotFound, fmt.Errorf("task not found"))
			return
		}

		zlog.Logger.Err(err).Msg("failed to get task")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to get task"))
		return
	}

	respond.OK(c, toResponse(t))
}
