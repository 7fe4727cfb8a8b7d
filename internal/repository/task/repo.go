// Package task provides Postgres persistence for tasks.
package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"image-resizer/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// Repository stores tasks in Postgres. The images list is kept as a JSONB
// document next to the scalar columns.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// SaveTask upserts the task by id. The upsert gives last-writer-wins
// semantics per task id, which is all the concurrency the worker needs:
// a task only ever moves from pending to a terminal state once.
func (r *Repository) SaveTask(ctx context.Context, t model.Task) error {
	query := `
		INSERT INTO tasks (id, status, price, original_ref, images, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    images = EXCLUDED.images,
		    error_message = EXCLUDED.error_message,
		    updated_at = EXCLUDED.updated_at
	`

	imagesJSON, err := json.Marshal(t.Images())
	if err != nil {
		return fmt.Errorf("save: failed to marshal images: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx, query,
		t.ID(), string(t.Status()), t.Price().Value(), t.OriginalReference(),
		imagesJSON, t.ErrorMessage(), t.CreatedAt(), t.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save: failed to save task: %w", err)
	}

	return nil
}

// GetTask loads a task by id, rehydrating the aggregate through the model's
// validating constructor.
func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (model.Task, error) {
	query := `
		SELECT status, price, original_ref, images, error_message, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var (
		status      string
		priceValue  float64
		originalRef string
		imagesBytes []byte
		errMessage  string
		createdAt   sql.NullTime
		updatedAt   sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&status, &priceValue, &originalRef, &imagesBytes, &errMessage, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrTaskNotFound
		}

		return model.Task{}, fmt.Errorf("get: failed to get task: %w", err)
	}

	var images []model.ProcessedImage
	if len(imagesBytes) > 0 {
		if err := json.Unmarshal(imagesBytes, &images); err != nil {
			return model.Task{}, fmt.Errorf("get: failed to unmarshal images: %w", err)
		}
	}

	price, err := model.PriceFrom(priceValue)
	if err != nil {
		return model.Task{}, fmt.Errorf("get: invalid persisted price: %w", err)
	}

	restored, err := model.RestoreTask(
		id, model.Status(status), price, originalRef,
		images, errMessage, createdAt.Time, updatedAt.Time,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("get: invalid persisted task: %w", err)
	}

	return restored, nil
}
