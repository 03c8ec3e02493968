package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/libs/auth/middleware"
	"github.com/tenderwatch/backend/libs/handlers"
	"go.uber.org/zap"
)

// ScheduleService is the interface that wraps methods for task scheduling business logic
type ScheduleService interface {
	// Add validates the request and stores a new, disabled task, returning its id
	Add(ctx context.Context, userID int, req *models.TaskRequest) (int, error)
	// Edit applies changed fields to an existing task and logs a diff
	Edit(ctx context.Context, userID, taskID int, req *models.TaskRequest) error
	// Cancel unregisters and deletes a task
	Cancel(ctx context.Context, userID, taskID int) error
	// Toggle flips the enabled flag and returns the new state
	Toggle(ctx context.Context, userID, taskID int) (bool, error)
	// List returns the caller's tasks
	List(ctx context.Context, userID int) ([]models.TaskView, error)
	// NextSchedule returns the earliest enabled start time, or "N/A"
	NextSchedule(ctx context.Context, userID int) (string, error)
}

// TaskLogService is the interface that wraps methods for task log business logic
type TaskLogService interface {
	// GetTaskLogs returns the log entries of one task
	GetTaskLogs(ctx context.Context, userID, taskID int) ([]models.TaskLogView, error)
	// GetAllLogs returns every log entry belonging to the caller
	GetAllLogs(ctx context.Context, userID int) ([]models.UserLogView, error)
	// ClearLogs removes the log entries of a task
	ClearLogs(ctx context.Context, userID, taskID int) error
}

// TaskHandler handles scraping task and task log requests
type TaskHandler struct {
	handlers.BaseHandler
	schedules ScheduleService
	logs      TaskLogService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(schedules ScheduleService, logs TaskLogService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		schedules:   schedules,
		logs:        logs,
	}
}

// RegisterRoutes registers task handler routes
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/scraping-tasks", h.ListTasks)
	r.Post("/add-task", h.AddTask)
	r.Put("/edit-task/{taskId}", h.EditTask)
	r.Delete("/cancel-task/{taskId}", h.CancelTask)
	r.Patch("/toggle-task-status/{taskId}", h.ToggleTaskStatus)
	r.Get("/task-logs/{taskId}", h.GetTaskLogs)
	r.Get("/all-task-logs", h.GetAllTaskLogs)
	r.Delete("/clear-logs/{taskId}", h.ClearLogs)
	r.Get("/next-schedule", h.NextSchedule)
}

// ListTasks handles GET /api/scraping-tasks
// @Summary List scraping tasks
// @Description List all scraping tasks owned by the authenticated user.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.TaskView "User's tasks"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /scraping-tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tasks, err := h.schedules.List(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// AddTask handles POST /api/add-task
// @Summary Add scraping task
// @Description Create a new scraping task. The task starts out disabled.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task body models.TaskRequest true "Task creation request"
// @Success 201 {object} map[string]any "Task created"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /add-task [post]
func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	taskID, err := h.schedules.Add(r.Context(), userID, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"msg":     "Task added successfully.",
		"task_id": taskID,
	})
}

// EditTask handles PUT /api/edit-task/{taskId}
// @Summary Edit scraping task
// @Description Update the fields of an existing task. Empty fields keep their current values.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Param task body models.TaskRequest true "Task update request"
// @Success 200 {object} map[string]string "Task updated"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 403 {object} map[string]string "Not the task owner"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /edit-task/{taskId} [put]
func (h *TaskHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.schedules.Edit(r.Context(), userID, taskID, &req); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusOK, "Task updated successfully.")
}

// CancelTask handles DELETE /api/cancel-task/{taskId}
// @Summary Cancel scraping task
// @Description Unschedule a task and delete it.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Success 200 {object} map[string]string "Task cancelled"
// @Failure 403 {object} map[string]string "Not the task owner"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /cancel-task/{taskId} [delete]
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.schedules.Cancel(r.Context(), userID, taskID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusOK, "Task cancelled successfully.")
}

// ToggleTaskStatus handles PATCH /api/toggle-task-status/{taskId}
// @Summary Toggle task status
// @Description Flip a task between enabled and disabled, scheduling or unscheduling its job.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Success 200 {object} map[string]any "New task state"
// @Failure 403 {object} map[string]string "Not the task owner"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /toggle-task-status/{taskId} [patch]
func (h *TaskHandler) ToggleTaskStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid task id")
		return
	}

	enabled, err := h.schedules.Toggle(r.Context(), userID, taskID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	msg := "Task disabled."
	if enabled {
		msg = "Task enabled."
	}
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"msg":        msg,
		"is_enabled": enabled,
	})
}

// GetTaskLogs handles GET /api/task-logs/{taskId}
// @Summary Get task logs
// @Description Get the log entries of one task.
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Success 200 {object} map[string][]models.TaskLogView "Task logs"
// @Failure 404 {object} map[string]string "No logs found"
// @Router /task-logs/{taskId} [get]
func (h *TaskHandler) GetTaskLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid task id")
		return
	}

	logs, err := h.logs.GetTaskLogs(r.Context(), userID, taskID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// GetAllTaskLogs handles GET /api/all-task-logs
// @Summary Get all task logs
// @Description Get every log entry belonging to the authenticated user, across tasks.
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.UserLogView "User logs"
// @Failure 404 {object} map[string]string "No logs found"
// @Router /all-task-logs [get]
func (h *TaskHandler) GetAllTaskLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	logs, err := h.logs.GetAllLogs(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// ClearLogs handles DELETE /api/clear-logs/{taskId}
// @Summary Clear task logs
// @Description Delete the log entries of one task.
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Success 200 {object} map[string]string "Logs cleared"
// @Failure 403 {object} map[string]string "Not the task owner"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /clear-logs/{taskId} [delete]
func (h *TaskHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.logs.ClearLogs(r.Context(), userID, taskID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusOK, "Logs cleared successfully.")
}

// NextSchedule handles GET /api/next-schedule
// @Summary Get next schedule
// @Description Get the earliest start time among the user's enabled tasks, or "N/A".
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Next schedule"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /next-schedule [get]
func (h *TaskHandler) NextSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondMsg(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	next, err := h.schedules.NextSchedule(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"next_schedule": next})
}

// respondServiceError maps domain errors to status codes
func (h *TaskHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrTaskNotFound),
		errors.Is(err, models.ErrLogsNotFound):
		h.RespondMsg(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrPermissionDenied):
		h.RespondMsg(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrNameRequired),
		errors.Is(err, models.ErrInvalidFrequency),
		errors.Is(err, models.ErrInvalidTimeFormat):
		h.RespondMsg(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("task request failed", zap.Error(err))
		h.RespondMsg(w, http.StatusInternalServerError, "internal server error")
	}
}

func taskIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "taskId"))
}
