package task

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"

	"image-resizer/internal/model"
	taskrepo "image-resizer/internal/repository/task"
)

type fakeService struct {
	submitted string
	task      model.Task
	submitErr error
	getErr    error
}

func (f *fakeService) Submit(_ context.Context, ref string) (model.Task, error) {
	f.submitted = ref
	if f.submitErr != nil {
		return model.Task{}, f.submitErr
	}
	return f.task, nil
}

func (f *fakeService) GetStatus(context.Context, uuid.UUID) (model.Task, error) {
	if f.getErr != nil {
		return model.Task{}, f.getErr
	}
	return f.task, nil
}

func newRouter(svc *fakeService) *ginext.Engine {
	r := ginext.New()

	h := NewHandler(svc)
	r.POST("/api/tasks", h.Create)
	r.GET("/api/tasks/:id", h.Get)

	return r
}

func pendingTask(t *testing.T) model.Task {
	t.Helper()

	created, err := model.NewTask("https://example.com/cat.jpg")
	require.NoError(t, err)
	return created
}

func TestCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeService{task: pendingTask(t)}
		r := newRouter(svc)

		body, _ := json.Marshal(CreateRequest{URL: "https://example.com/cat.jpg"})
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "https://example.com/cat.jpg", svc.submitted)

		var out struct {
			Result Response `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, svc.task.ID().String(), out.Result.TaskID)
		assert.Equal(t, "pending", out.Result.Status)
		assert.InDelta(t, svc.task.Price().Value(), out.Result.Price, 0.0001)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newRouter(&fakeService{task: pendingTask(t)})

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader([]byte("{bad")))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty url rejected", func(t *testing.T) {
		svc := &fakeService{submitErr: model.ErrInvalidArgument}
		r := newRouter(svc)

		body, _ := json.Marshal(CreateRequest{URL: ""})
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGet(t *testing.T) {
	t.Run("completed task", func(t *testing.T) {
		created := pendingTask(t)
		done, err := created.Complete([]model.ProcessedImage{
			{Resolution: "1024", Path: "cat/1024/abc.jpg"},
			{Resolution: "800", Path: "cat/800/def.jpg"},
		})
		require.NoError(t, err)

		r := newRouter(&fakeService{task: done})

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+done.ID().String(), nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out struct {
			Result Response `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "completed", out.Result.Status)
		require.Len(t, out.Result.Images, 2)
		assert.Equal(t, "1024", out.Result.Images[0].Resolution)
	})

	t.Run("unknown id", func(t *testing.T) {
		r := newRouter(&fakeService{getErr: taskrepo.ErrTaskNotFound})

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		r := newRouter(&fakeService{})

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
