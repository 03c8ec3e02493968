package models

import "time"

// TaskLog represents an append-only audit log entry for a scheduled task
type TaskLog struct {
	TaskID    int       `json:"task_id"`
	UserID    int       `json:"user_id"`
	LogEntry  string    `json:"log_entry"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskLogView represents a log entry in a per-task response
type TaskLogView struct {
	LogEntry  string    `json:"log_entry"`
	CreatedAt time.Time `json:"created_at"`
}

// UserLogView represents a log entry in the all-task-logs response
type UserLogView struct {
	TaskID    int       `json:"task_id"`
	LogEntry  string    `json:"log_entry"`
	CreatedAt time.Time `json:"created_at"`
}
