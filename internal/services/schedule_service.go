package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/internal/scheduler"
	"go.uber.org/zap"
)

// taskTimeLayout is the wire format for explicit start and end times
const taskTimeLayout = "2006-01-02 15:04:05"

// defaultStartHour anchors derived schedule windows at 10:00 local time
const defaultStartHour = 10

type ScheduledTaskRepository interface {
	Create(ctx context.Context, task *models.ScheduledTask) error
	GetByID(ctx context.Context, taskID int) (*models.ScheduledTask, error)
	GetByUserID(ctx context.Context, userID int) ([]models.ScheduledTask, error)
	GetEnabled(ctx context.Context) ([]models.ScheduledTask, error)
	Update(ctx context.Context, task *models.ScheduledTask) error
	SetEnabled(ctx context.Context, taskID int, enabled bool) error
	Delete(ctx context.Context, taskID int) error
	GetNextStartTime(ctx context.Context, userID int) (*time.Time, error)
}

type TaskLogWriter interface {
	Create(ctx context.Context, log *models.TaskLog) error
}

type JobEngine interface {
	UpsertJob(id string, trigger scheduler.Trigger, fn scheduler.JobFunc) error
	RemoveJob(id string) error
}

type ScrapeRunner interface {
	Run(ctx context.Context, tenderType string) error
}

type scheduleService struct {
	repo   ScheduledTaskRepository
	logs   TaskLogWriter
	engine JobEngine
	runner ScrapeRunner
	logger *zap.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(repo ScheduledTaskRepository, logs TaskLogWriter, engine JobEngine, runner ScrapeRunner, logger *zap.Logger) *scheduleService {
	return &scheduleService{
		repo:   repo,
		logs:   logs,
		engine: engine,
		runner: runner,
		logger: logger,
	}
}

// JobID builds the engine job id for a task
func JobID(userID, taskID int) string {
	return fmt.Sprintf("user_%d_task_%d", userID, taskID)
}

// ParseJobID recovers the owner and task from an engine job id
func ParseJobID(jobID string) (userID, taskID int, err error) {
	if _, err := fmt.Sscanf(jobID, "user_%d_task_%d", &userID, &taskID); err != nil {
		return 0, 0, fmt.Errorf("malformed job id %q: %w", jobID, err)
	}
	return userID, taskID, nil
}

// Add validates the request and stores a new task. Tasks start out disabled;
// nothing is registered with the engine until the task is toggled on.
func (s *scheduleService) Add(ctx context.Context, userID int, req *models.TaskRequest) (int, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return 0, models.ErrNameRequired
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = models.FrequencyDaily
	}

	start, end, err := deriveWindow(frequency, req.StartTime, req.EndTime)
	if err != nil {
		return 0, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	tenderType := req.TenderType
	if tenderType == "" {
		tenderType = models.TenderTypeAll
	}

	task := &models.ScheduledTask{
		UserID:     userID,
		Name:       name,
		Frequency:  frequency,
		StartTime:  start,
		EndTime:    end,
		Priority:   priority,
		IsEnabled:  false,
		TenderType: tenderType,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}

	s.writeLog(ctx, task, fmt.Sprintf("Task %q added successfully.", task.Name))
	return task.TaskID, nil
}

// Edit applies the changed fields of the request to an existing task, logs a
// field-by-field diff, and refreshes the engine registration when the task is
// enabled. Empty request fields keep their current values; the schedule
// window is re-derived only when the request touches frequency or the
// explicit times.
func (s *scheduleService) Edit(ctx context.Context, userID, taskID int, req *models.TaskRequest) error {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return models.ErrPermissionDenied
	}

	updated := *task
	if name := strings.TrimSpace(req.Name); name != "" {
		updated.Name = name
	}
	if req.Frequency != "" {
		updated.Frequency = req.Frequency
	}
	if req.Priority != "" {
		updated.Priority = req.Priority
	}
	if req.TenderType != "" {
		updated.TenderType = req.TenderType
	}

	if req.Frequency != "" || req.StartTime != "" || req.EndTime != "" {
		start, end, err := deriveWindow(updated.Frequency, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		updated.StartTime = start
		updated.EndTime = end
	}

	changes := diffTasks(task, &updated)

	if err := s.repo.Update(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if updated.IsEnabled {
		if err := s.registerJob(&updated); err != nil {
			s.logger.Error("failed to reschedule edited task",
				zap.Int("task_id", taskID), zap.Error(err))
		}
	}

	entry := "Task updated with no changes."
	if len(changes) > 0 {
		entry = strings.Join(changes, " and ") + "."
	}
	s.writeLog(ctx, &updated, entry)
	return nil
}

// Cancel unregisters and deletes a task. A missing engine registration is
// logged and ignored; the row is removed either way.
func (s *scheduleService) Cancel(ctx context.Context, userID, taskID int) error {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return models.ErrPermissionDenied
	}

	if err := s.engine.RemoveJob(JobID(userID, taskID)); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			s.logger.Warn("no job registered for cancelled task", zap.Int("task_id", taskID))
		} else {
			s.logger.Error("failed to remove job", zap.Int("task_id", taskID), zap.Error(err))
		}
	}

	s.writeLog(ctx, task, fmt.Sprintf("Task %q cancelled and removed.", task.Name))

	if err := s.repo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Toggle flips the enabled flag, registering or unregistering the engine job
// to match, and returns the new state
func (s *scheduleService) Toggle(ctx context.Context, userID, taskID int) (bool, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	if task.UserID != userID {
		return false, models.ErrPermissionDenied
	}

	enabled := !task.IsEnabled
	if enabled {
		if err := s.registerJob(task); err != nil {
			s.logger.Error("failed to schedule task", zap.Int("task_id", taskID), zap.Error(err))
		}
	} else {
		if err := s.engine.RemoveJob(JobID(userID, taskID)); err != nil {
			if errors.Is(err, scheduler.ErrJobNotFound) {
				s.logger.Warn("no job registered for disabled task", zap.Int("task_id", taskID))
			} else {
				s.logger.Error("failed to remove job", zap.Int("task_id", taskID), zap.Error(err))
			}
		}
	}

	if err := s.repo.SetEnabled(ctx, taskID, enabled); err != nil {
		return false, fmt.Errorf("failed to update task status: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	s.writeLog(ctx, task, fmt.Sprintf("Task %q %s.", task.Name, state))
	return enabled, nil
}

// List returns the caller's tasks in serialized form
func (s *scheduleService) List(ctx context.Context, userID int) ([]models.TaskView, error) {
	tasks, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	views := make([]models.TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, tasks[i].View())
	}
	return views, nil
}

// NextSchedule returns the earliest start time among the caller's enabled
// tasks, or "N/A" when there is none
func (s *scheduleService) NextSchedule(ctx context.Context, userID int) (string, error) {
	next, err := s.repo.GetNextStartTime(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get next schedule: %w", err)
	}
	if next == nil {
		return "N/A", nil
	}
	return next.Format(taskTimeLayout), nil
}

// RestoreJobs re-registers every enabled task with the engine. Called once at
// startup; individual registration failures are logged and skipped.
func (s *scheduleService) RestoreJobs(ctx context.Context) error {
	tasks, err := s.repo.GetEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled tasks: %w", err)
	}

	restored := 0
	for i := range tasks {
		if err := s.registerJob(&tasks[i]); err != nil {
			s.logger.Error("failed to restore job",
				zap.Int("task_id", tasks[i].TaskID), zap.Error(err))
			continue
		}
		restored++
	}

	s.logger.Info("restored scheduled jobs", zap.Int("count", restored), zap.Int("total", len(tasks)))
	return nil
}

// registerJob swaps in an engine registration matching the task's window
func (s *scheduleService) registerJob(task *models.ScheduledTask) error {
	trigger := scheduler.IntervalTrigger{
		Start: task.StartTime,
		End:   task.EndTime,
		Every: scrapeInterval(task.Frequency),
	}

	tenderType := task.TenderType
	fn := func(ctx context.Context) error {
		return s.runner.Run(ctx, tenderType)
	}

	return s.engine.UpsertJob(JobID(task.UserID, task.TaskID), trigger, fn)
}

func (s *scheduleService) writeLog(ctx context.Context, task *models.ScheduledTask, entry string) {
	log := &models.TaskLog{
		TaskID:    task.TaskID,
		UserID:    task.UserID,
		LogEntry:  entry,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.logs.Create(ctx, log); err != nil {
		s.logger.Warn("failed to write task log",
			zap.Int("task_id", task.TaskID), zap.Error(err))
	}
}

// deriveWindow resolves a request's schedule window. Explicit times win;
// otherwise the window starts today at 10:00 and spans one day or one week
// depending on frequency.
func deriveWindow(frequency, startTime, endTime string) (time.Time, time.Time, error) {
	if startTime != "" && endTime != "" {
		start, err := time.ParseInLocation(taskTimeLayout, startTime, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, models.ErrInvalidTimeFormat
		}
		end, err := time.ParseInLocation(taskTimeLayout, endTime, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, models.ErrInvalidTimeFormat
		}
		return start, end, nil
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), defaultStartHour, 0, 0, 0, now.Location())

	switch frequency {
	case models.FrequencyDaily:
		return start, start.Add(24 * time.Hour), nil
	case models.FrequencyWeekly:
		return start, start.Add(7 * 24 * time.Hour), nil
	}
	return time.Time{}, time.Time{}, models.ErrInvalidFrequency
}

// scrapeInterval maps a frequency to the gap between runs
func scrapeInterval(frequency string) time.Duration {
	if frequency == models.FrequencyWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// diffTasks describes the field changes between two versions of a task
func diffTasks(old, updated *models.ScheduledTask) []string {
	var changes []string
	if old.Name != updated.Name {
		changes = append(changes, fmt.Sprintf("name changed from %q to %q", old.Name, updated.Name))
	}
	if old.Frequency != updated.Frequency {
		changes = append(changes, fmt.Sprintf("frequency changed from %s to %s", old.Frequency, updated.Frequency))
	}
	if old.Priority != updated.Priority {
		changes = append(changes, fmt.Sprintf("priority changed from %s to %s", old.Priority, updated.Priority))
	}
	if old.TenderType != updated.TenderType {
		changes = append(changes, fmt.Sprintf("tender type changed from %s to %s", old.TenderType, updated.TenderType))
	}
	if !old.StartTime.Equal(updated.StartTime) {
		changes = append(changes, fmt.Sprintf("start time changed from %s to %s",
			old.StartTime.Format(taskTimeLayout), updated.StartTime.Format(taskTimeLayout)))
	}
	if !old.EndTime.Equal(updated.EndTime) {
		changes = append(changes, fmt.Sprintf("end time changed from %s to %s",
			old.EndTime.Format(taskTimeLayout), updated.EndTime.Format(taskTimeLayout)))
	}
	return changes
}
