package models

import "time"

// Task frequency values accepted by the API
const (
	FrequencyDaily  = "Daily"
	FrequencyWeekly = "Weekly"
	FrequencyCustom = "Custom"
)

// Task priority values, advisory only
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// TenderTypeAll selects every registered tender source
const TenderTypeAll = "All"

// ScheduledTask represents a user-owned scraping schedule
type ScheduledTask struct {
	TaskID     int       `json:"task_id"`
	UserID     int       `json:"user_id"`
	Name       string    `json:"name"`
	Frequency  string    `json:"frequency"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Priority   string    `json:"priority"`
	IsEnabled  bool      `json:"is_enabled"`
	TenderType string    `json:"tender_type"`
}

// TaskRequest represents the body of add-task and edit-task requests
type TaskRequest struct {
	Name       string `json:"name"`
	Frequency  string `json:"frequency,omitempty"`
	Priority   string `json:"priority,omitempty"`
	TenderType string `json:"tenderType,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
}

// TaskView represents a scheduled task in a list response, with
// timestamps serialized to RFC 3339 text
type TaskView struct {
	TaskID     int    `json:"task_id"`
	Name       string `json:"name"`
	Frequency  string `json:"frequency"`
	Priority   string `json:"priority"`
	IsEnabled  bool   `json:"is_enabled"`
	TenderType string `json:"tender_type"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// View converts a task to its serialized list form
func (t *ScheduledTask) View() TaskView {
	return TaskView{
		TaskID:     t.TaskID,
		Name:       t.Name,
		Frequency:  t.Frequency,
		Priority:   t.Priority,
		IsEnabled:  t.IsEnabled,
		TenderType: t.TenderType,
		StartTime:  t.StartTime.Format(time.RFC3339),
		EndTime:    t.EndTime.Format(time.RFC3339),
	}
}
