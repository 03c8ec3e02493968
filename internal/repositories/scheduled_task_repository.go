package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tenderwatch/backend/internal/models"
)

type scheduledTaskRepository struct {
	db *sql.DB
}

// NewScheduledTaskRepository creates a new scheduled task repository
func NewScheduledTaskRepository(db *sql.DB) *scheduledTaskRepository {
	return &scheduledTaskRepository{db: db}
}

// Create inserts a new scheduled task and fills in the store-assigned id
func (r *scheduledTaskRepository) Create(ctx context.Context, task *models.ScheduledTask) error {
	query := `
		INSERT INTO scheduled_tasks (user_id, name, frequency, start_time, end_time, priority, is_enabled, tender_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		task.UserID, task.Name, task.Frequency, task.StartTime, task.EndTime,
		task.Priority, task.IsEnabled, task.TenderType)
	if err != nil {
		return fmt.Errorf("failed to create scheduled task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.TaskID = int(id)
	return nil
}

// GetByID retrieves a scheduled task by id
func (r *scheduledTaskRepository) GetByID(ctx context.Context, taskID int) (*models.ScheduledTask, error) {
	query := `
		SELECT task_id, user_id, name, frequency, start_time, end_time, priority, is_enabled, tender_type
		FROM scheduled_tasks
		WHERE task_id = ?
		LIMIT 1
	`

	task := &models.ScheduledTask{}

	err := r.db.QueryRowContext(ctx, query, taskID).Scan(
		&task.TaskID,
		&task.UserID,
		&task.Name,
		&task.Frequency,
		&task.StartTime,
		&task.EndTime,
		&task.Priority,
		&task.IsEnabled,
		&task.TenderType,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled task by id: %w", err)
	}

	return task, nil
}

// GetByUserID retrieves all tasks owned by a user
func (r *scheduledTaskRepository) GetByUserID(ctx context.Context, userID int) ([]models.ScheduledTask, error) {
	query := `
		SELECT task_id, user_id, name, frequency, start_time, end_time, priority, is_enabled, tender_type
		FROM scheduled_tasks
		WHERE user_id = ?
		ORDER BY task_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetEnabled retrieves every enabled task across all users, used to restore
// job registrations after a restart
func (r *scheduledTaskRepository) GetEnabled(ctx context.Context) ([]models.ScheduledTask, error) {
	query := `
		SELECT task_id, user_id, name, frequency, start_time, end_time, priority, is_enabled, tender_type
		FROM scheduled_tasks
		WHERE is_enabled = TRUE
		ORDER BY task_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	for rows.Next() {
		var task models.ScheduledTask
		err := rows.Scan(
			&task.TaskID,
			&task.UserID,
			&task.Name,
			&task.Frequency,
			&task.StartTime,
			&task.EndTime,
			&task.Priority,
			&task.IsEnabled,
			&task.TenderType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// Update rewrites the mutable fields of a scheduled task
func (r *scheduledTaskRepository) Update(ctx context.Context, task *models.ScheduledTask) error {
	query := `
		UPDATE scheduled_tasks
		SET name = ?, frequency = ?, start_time = ?, end_time = ?, priority = ?, tender_type = ?
		WHERE task_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Name, task.Frequency, task.StartTime, task.EndTime,
		task.Priority, task.TenderType, task.TaskID)
	if err != nil {
		return fmt.Errorf("failed to update scheduled task: %w", err)
	}

	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	return nil
}

// SetEnabled updates the is_enabled flag of a scheduled task
func (r *scheduledTaskRepository) SetEnabled(ctx context.Context, taskID int, enabled bool) error {
	query := `UPDATE scheduled_tasks SET is_enabled = ? WHERE task_id = ?`

	result, err := r.db.ExecContext(ctx, query, enabled, taskID)
	if err != nil {
		return fmt.Errorf("failed to update is_enabled: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrTaskNotFound
	}

	return nil
}

// Delete removes a scheduled task row
func (r *scheduledTaskRepository) Delete(ctx context.Context, taskID int) error {
	query := `DELETE FROM scheduled_tasks WHERE task_id = ?`

	result, err := r.db.ExecContext(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrTaskNotFound
	}

	return nil
}

// GetNextStartTime returns the earliest start_time among a user's enabled
// tasks, or nil when the user has none
func (r *scheduledTaskRepository) GetNextStartTime(ctx context.Context, userID int) (*time.Time, error) {
	query := `
		SELECT start_time
		FROM scheduled_tasks
		WHERE user_id = ? AND is_enabled = TRUE
		ORDER BY start_time ASC
		LIMIT 1
	`

	var startTime time.Time
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&startTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next start time: %w", err)
	}

	return &startTime, nil
}
