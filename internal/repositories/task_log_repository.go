package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenderwatch/backend/internal/models"
)

type taskLogRepository struct {
	db *sql.DB
}

// NewTaskLogRepository creates a new task log repository
func NewTaskLogRepository(db *sql.DB) *taskLogRepository {
	return &taskLogRepository{db: db}
}

// Create appends a task log entry; rows are never updated afterwards
func (r *taskLogRepository) Create(ctx context.Context, log *models.TaskLog) error {
	query := `
		INSERT INTO task_logs (task_id, user_id, log_entry, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, log.TaskID, log.UserID, log.LogEntry, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task log: %w", err)
	}

	return nil
}

// GetByTaskAndUser retrieves the log entries for a task, scoped to its owner
func (r *taskLogRepository) GetByTaskAndUser(ctx context.Context, taskID, userID int) ([]models.TaskLogView, error) {
	query := `
		SELECT log_entry, created_at
		FROM task_logs
		WHERE task_id = ? AND user_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task logs: %w", err)
	}
	defer rows.Close()

	var logs []models.TaskLogView
	for rows.Next() {
		var log models.TaskLogView
		if err := rows.Scan(&log.LogEntry, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}

// GetByUser retrieves every log entry belonging to a user, across tasks
func (r *taskLogRepository) GetByUser(ctx context.Context, userID int) ([]models.UserLogView, error) {
	query := `
		SELECT task_id, log_entry, created_at
		FROM task_logs
		WHERE user_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user logs: %w", err)
	}
	defer rows.Close()

	var logs []models.UserLogView
	for rows.Next() {
		var log models.UserLogView
		if err := rows.Scan(&log.TaskID, &log.LogEntry, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}

// DeleteByTaskAndUser removes all log rows matching both the task and its
// owner; rows for other users are untouched
func (r *taskLogRepository) DeleteByTaskAndUser(ctx context.Context, taskID, userID int) error {
	query := `DELETE FROM task_logs WHERE task_id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task logs: %w", err)
	}

	return nil
}
