package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/internal/scheduler"
	"go.uber.org/zap"
)

// taskLogListener records every job fire as a task log row. It subscribes to
// the engine and never propagates failures back to it.
type taskLogListener struct {
	logs   TaskLogWriter
	logger *zap.Logger
}

// NewTaskLogListener creates a listener writing job outcomes to task logs
func NewTaskLogListener(logs TaskLogWriter, logger *zap.Logger) *taskLogListener {
	return &taskLogListener{logs: logs, logger: logger}
}

// HandleJobEvent implements scheduler.Listener
func (l *taskLogListener) HandleJobEvent(e scheduler.Event) {
	userID, taskID, err := ParseJobID(e.JobID)
	if err != nil {
		l.logger.Warn("event for unrecognized job id", zap.String("job_id", e.JobID))
		return
	}

	entry := fmt.Sprintf("Job %s completed successfully.", e.JobID)
	if e.Err != nil {
		entry = fmt.Sprintf("Job %s failed: %v", e.JobID, e.Err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := &models.TaskLog{
		TaskID:    taskID,
		UserID:    userID,
		LogEntry:  entry,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.logs.Create(ctx, log); err != nil {
		l.logger.Error("failed to record job outcome",
			zap.String("job_id", e.JobID), zap.Error(err))
	}
}
