package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{name: "url reference", ref: "https://example.com/cat.jpg"},
		{name: "path reference", ref: "/tmp/cat.jpg"},
		{name: "trims whitespace", ref: "  https://example.com/cat.jpg  "},
		{name: "empty", ref: "", wantErr: true},
		{name: "whitespace only", ref: "   ", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, err := NewTask(tc.ref)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, task.ID())
			assert.Equal(t, StatusPending, task.Status())
			assert.GreaterOrEqual(t, task.Price().Value(), 5.0)
			assert.LessOrEqual(t, task.Price().Value(), 50.0)
			assert.Empty(t, task.Images())
			assert.Empty(t, task.ErrorMessage())
			assert.Equal(t, task.CreatedAt(), task.UpdatedAt())
		})
	}
}

func TestTask_Complete(t *testing.T) {
	images := []ProcessedImage{
		{Resolution: "1024", Path: "cat/1024/abc.jpg"},
		{Resolution: "800", Path: "cat/800/def.jpg"},
	}

	t.Run("pending task completes", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		done, err := task.Complete(images)
		require.NoError(t, err)

		assert.Equal(t, StatusCompleted, done.Status())
		assert.Equal(t, images, done.Images())
		assert.True(t, done.UpdatedAt().After(done.CreatedAt()))

		// The original value stays untouched.
		assert.Equal(t, StatusPending, task.Status())
		assert.Empty(t, task.Images())
	})

	t.Run("empty images rejected regardless of status", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		_, err = task.Complete(nil)
		require.ErrorIs(t, err, ErrInvalidArgument)

		done, err := task.Complete(images)
		require.NoError(t, err)
		_, err = done.Complete(nil)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("image without path rejected", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		_, err = task.Complete([]ProcessedImage{{Resolution: "1024"}})
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("completing twice is a no-op", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		done, err := task.Complete(images)
		require.NoError(t, err)

		again, err := done.Complete([]ProcessedImage{{Resolution: "640", Path: "other"}})
		require.NoError(t, err)
		assert.Equal(t, done.Images(), again.Images())
		assert.Equal(t, done.UpdatedAt(), again.UpdatedAt())
	})

	t.Run("failed task cannot complete", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		failed, err := task.Fail("boom")
		require.NoError(t, err)

		_, err = failed.Complete(images)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestTask_Fail(t *testing.T) {
	t.Run("pending task fails", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		failed, err := task.Fail("decode error")
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, failed.Status())
		assert.Equal(t, "decode error", failed.ErrorMessage())
		assert.Empty(t, failed.Images())
	})

	t.Run("empty message rejected", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		_, err = task.Fail("  ")
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("failing twice is idempotent", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		failed, err := task.Fail("first")
		require.NoError(t, err)

		again, err := failed.Fail("second")
		require.NoError(t, err)
		assert.Equal(t, "first", again.ErrorMessage())
	})

	t.Run("completed task cannot fail", func(t *testing.T) {
		task, err := NewTask("cat.jpg")
		require.NoError(t, err)

		done, err := task.Complete([]ProcessedImage{{Resolution: "1024", Path: "p"}})
		require.NoError(t, err)

		_, err = done.Fail("late failure")
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestTask_ImagesDefensiveCopy(t *testing.T) {
	task, err := NewTask("cat.jpg")
	require.NoError(t, err)

	done, err := task.Complete([]ProcessedImage{{Resolution: "1024", Path: "cat/1024/abc.jpg"}})
	require.NoError(t, err)

	view := done.Images()
	view[0].Path = "mutated"

	assert.Equal(t, "cat/1024/abc.jpg", done.Images()[0].Path)
}

func TestRestoreTask(t *testing.T) {
	price, err := PriceFrom(10)
	require.NoError(t, err)

	id := uuid.New()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		status  Status
		images  []ProcessedImage
		errMsg  string
		wantErr bool
	}{
		{name: "pending", status: StatusPending},
		{name: "completed with images", status: StatusCompleted, images: []ProcessedImage{{Resolution: "800", Path: "p"}}},
		{name: "failed with message", status: StatusFailed, errMsg: "boom"},
		{name: "completed without images", status: StatusCompleted, wantErr: true},
		{name: "failed without message", status: StatusFailed, wantErr: true},
		{name: "unknown status", status: Status("processing"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, err := RestoreTask(id, tc.status, price, "cat.jpg", tc.images, tc.errMsg, now, now)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, task.ID())
			assert.Equal(t, tc.status, task.Status())
			assert.Equal(t, tc.images, task.Images())
		})
	}
}
