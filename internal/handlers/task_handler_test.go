package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/libs/auth/middleware"
	"go.uber.org/zap"
)

// mockScheduleService is a mock implementation of ScheduleService
type mockScheduleService struct {
	tasks   []models.TaskView
	next    string
	taskID  int
	enabled bool
	err     error
}

func (m *mockScheduleService) Add(ctx context.Context, userID int, req *models.TaskRequest) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.taskID, nil
}

func (m *mockScheduleService) Edit(ctx context.Context, userID, taskID int, req *models.TaskRequest) error {
	return m.err
}

func (m *mockScheduleService) Cancel(ctx context.Context, userID, taskID int) error {
	return m.err
}

func (m *mockScheduleService) Toggle(ctx context.Context, userID, taskID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.enabled, nil
}

func (m *mockScheduleService) List(ctx context.Context, userID int) ([]models.TaskView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks, nil
}

func (m *mockScheduleService) NextSchedule(ctx context.Context, userID int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.next, nil
}

// mockTaskLogService is a mock implementation of TaskLogService
type mockTaskLogService struct {
	taskLogs []models.TaskLogView
	userLogs []models.UserLogView
	err      error
}

func (m *mockTaskLogService) GetTaskLogs(ctx context.Context, userID, taskID int) ([]models.TaskLogView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.taskLogs, nil
}

func (m *mockTaskLogService) GetAllLogs(ctx context.Context, userID int) ([]models.UserLogView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.userLogs, nil
}

func (m *mockTaskLogService) ClearLogs(ctx context.Context, userID, taskID int) error {
	return m.err
}

// doTaskRequest routes a request through the handler as user 7
func doTaskRequest(schedules *mockScheduleService, logs *mockTaskLogService, method, target string, body []byte) *httptest.ResponseRecorder {
	h := NewTaskHandler(schedules, logs, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 7))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTaskHandler_ListTasks(t *testing.T) {
	tests := []struct {
		name           string
		service        *mockScheduleService
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "success",
			service: &mockScheduleService{tasks: []models.TaskView{
				{TaskID: 1, Name: "UNDP tenders"},
				{TaskID: 2, Name: "weekly sweep"},
			}},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "empty list",
			service:        &mockScheduleService{tasks: []models.TaskView{}},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "service error",
			service:        &mockScheduleService{err: errors.New("database error")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doTaskRequest(tt.service, &mockTaskLogService{}, http.MethodGet, "/scraping-tasks", nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var body map[string][]models.TaskView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Len(t, body["tasks"], tt.expectedCount)
			}
		})
	}
}

func TestTaskHandler_ListTasksUnauthorized(t *testing.T) {
	h := NewTaskHandler(&mockScheduleService{}, &mockTaskLogService{}, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/scraping-tasks", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskHandler_AddTask(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *mockScheduleService
		expectedStatus int
	}{
		{
			name:           "created",
			body:           `{"name": "UNDP tenders", "frequency": "Daily"}`,
			service:        &mockScheduleService{taskID: 42},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid body",
			body:           `{not json`,
			service:        &mockScheduleService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			body:           `{"frequency": "Daily"}`,
			service:        &mockScheduleService{err: models.ErrNameRequired},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid frequency",
			body:           `{"name": "x", "frequency": "Hourly"}`,
			service:        &mockScheduleService{err: models.ErrInvalidFrequency},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid time format",
			body:           `{"name": "x", "startTime": "bad", "endTime": "bad"}`,
			service:        &mockScheduleService{err: models.ErrInvalidTimeFormat},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doTaskRequest(tt.service, &mockTaskLogService{}, http.MethodPost, "/add-task", []byte(tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, float64(42), body["task_id"])
				assert.Equal(t, "Task added successfully.", body["msg"])
			} else {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["msg"])
			}
		})
	}
}

func TestTaskHandler_EditTask(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		service        *mockScheduleService
		expectedStatus int
	}{
		{
			name:           "success",
			target:         "/edit-task/3",
			service:        &mockScheduleService{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid task id",
			target:         "/edit-task/abc",
			service:        &mockScheduleService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found",
			target:         "/edit-task/99",
			service:        &mockScheduleService{err: models.ErrTaskNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not owner",
			target:         "/edit-task/3",
			service:        &mockScheduleService{err: models.ErrPermissionDenied},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doTaskRequest(tt.service, &mockTaskLogService{}, http.MethodPut, tt.target, []byte(`{"name": "renamed"}`))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestTaskHandler_CancelTask(t *testing.T) {
	tests := []struct {
		name           string
		service        *mockScheduleService
		expectedStatus int
	}{
		{
			name:           "success",
			service:        &mockScheduleService{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			service:        &mockScheduleService{err: models.ErrTaskNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not owner",
			service:        &mockScheduleService{err: models.ErrPermissionDenied},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doTaskRequest(tt.service, &mockTaskLogService{}, http.MethodDelete, "/cancel-task/3", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestTaskHandler_ToggleTaskStatus(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		rec := doTaskRequest(&mockScheduleService{enabled: true}, &mockTaskLogService{}, http.MethodPatch, "/toggle-task-status/3", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["is_enabled"])
		assert.Equal(t, "Task enabled.", body["msg"])
	})

	t.Run("disabled", func(t *testing.T) {
		rec := doTaskRequest(&mockScheduleService{enabled: false}, &mockTaskLogService{}, http.MethodPatch, "/toggle-task-status/3", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["is_enabled"])
		assert.Equal(t, "Task disabled.", body["msg"])
	})

	t.Run("not found", func(t *testing.T) {
		rec := doTaskRequest(&mockScheduleService{err: models.ErrTaskNotFound}, &mockTaskLogService{}, http.MethodPatch, "/toggle-task-status/3", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandler_GetTaskLogs(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)

	tests := []struct {
		name           string
		service        *mockTaskLogService
		expectedStatus int
	}{
		{
			name: "success",
			service: &mockTaskLogService{taskLogs: []models.TaskLogView{
				{LogEntry: "Task \"UNDP tenders\" added successfully.", CreatedAt: created},
			}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no logs",
			service:        &mockTaskLogService{err: models.ErrLogsNotFound},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doTaskRequest(&mockScheduleService{}, tt.service, http.MethodGet, "/task-logs/3", nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var body map[string][]models.TaskLogView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Len(t, body["logs"], 1)
			}
		})
	}
}

func TestTaskHandler_GetAllTaskLogs(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		service := &mockTaskLogService{userLogs: []models.UserLogView{
			{TaskID: 1, LogEntry: "entry", CreatedAt: created},
		}}
		rec := doTaskRequest(&mockScheduleService{}, service, http.MethodGet, "/all-task-logs", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string][]models.UserLogView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body["logs"], 1)
		assert.Equal(t, 1, body["logs"][0].TaskID)
	})

	t.Run("no logs", func(t *testing.T) {
		service := &mockTaskLogService{err: models.ErrLogsNotFound}
		rec := doTaskRequest(&mockScheduleService{}, service, http.MethodGet, "/all-task-logs", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandler_ClearLogs(t *testing.T) {
	tests := []struct {
		name           string
		service        *mockTaskLogService
		expectedStatus int
	}{
		{
			name:           "success",
			service:        &mockTaskLogService{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "task not found",
			service:        &mockTaskLogService{err: models.ErrTaskNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not owner",
			service:        &mockTaskLogService{err: models.ErrPermissionDenied},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doTaskRequest(&mockScheduleService{}, tt.service, http.MethodDelete, "/clear-logs/3", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestTaskHandler_NextSchedule(t *testing.T) {
	t.Run("with upcoming task", func(t *testing.T) {
		rec := doTaskRequest(&mockScheduleService{next: "2026-03-01 10:00:00"}, &mockTaskLogService{}, http.MethodGet, "/next-schedule", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "2026-03-01 10:00:00", body["next_schedule"])
	})

	t.Run("no enabled tasks", func(t *testing.T) {
		rec := doTaskRequest(&mockScheduleService{next: "N/A"}, &mockTaskLogService{}, http.MethodGet, "/next-schedule", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "N/A", body["next_schedule"])
	})
}
