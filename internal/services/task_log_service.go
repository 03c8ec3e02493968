package services

import (
	"context"
	"fmt"

	"github.com/tenderwatch/backend/internal/models"
	"go.uber.org/zap"
)

type TaskLogRepository interface {
	Create(ctx context.Context, log *models.TaskLog) error
	GetByTaskAndUser(ctx context.Context, taskID, userID int) ([]models.TaskLogView, error)
	GetByUser(ctx context.Context, userID int) ([]models.UserLogView, error)
	DeleteByTaskAndUser(ctx context.Context, taskID, userID int) error
}

type TaskReader interface {
	GetByID(ctx context.Context, taskID int) (*models.ScheduledTask, error)
}

type taskLogService struct {
	repo   TaskLogRepository
	tasks  TaskReader
	logger *zap.Logger
}

// NewTaskLogService creates a new task log service
func NewTaskLogService(repo TaskLogRepository, tasks TaskReader, logger *zap.Logger) *taskLogService {
	return &taskLogService{
		repo:   repo,
		tasks:  tasks,
		logger: logger,
	}
}

// GetTaskLogs returns the log entries for one task. An unknown task and a
// task without logs both surface as ErrLogsNotFound.
func (s *taskLogService) GetTaskLogs(ctx context.Context, userID, taskID int) ([]models.TaskLogView, error) {
	logs, err := s.repo.GetByTaskAndUser(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, models.ErrLogsNotFound
	}
	return logs, nil
}

// GetAllLogs returns every log entry belonging to the caller
func (s *taskLogService) GetAllLogs(ctx context.Context, userID int) ([]models.UserLogView, error) {
	logs, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, models.ErrLogsNotFound
	}
	return logs, nil
}

// ClearLogs removes the log entries of a task after verifying ownership
func (s *taskLogService) ClearLogs(ctx context.Context, userID, taskID int) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return models.ErrPermissionDenied
	}

	if err := s.repo.DeleteByTaskAndUser(ctx, taskID, userID); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}

	s.logger.Info("cleared task logs", zap.Int("task_id", taskID), zap.Int("user_id", userID))
	return nil
}
