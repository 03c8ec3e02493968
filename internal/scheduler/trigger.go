package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger computes fire times for a job.
type Trigger interface {
	// Next returns the first fire time strictly after t. The second return
	// value is false when the trigger has no further occurrences.
	Next(t time.Time) (time.Time, bool)
}

// DateTrigger fires exactly once at a fixed point in time.
type DateTrigger struct {
	At time.Time
}

// Next implements Trigger
func (d DateTrigger) Next(t time.Time) (time.Time, bool) {
	if d.At.After(t) {
		return d.At, true
	}
	return time.Time{}, false
}

// IntervalTrigger fires at Start and then every Every, until End. A zero End
// means the trigger recurs forever. Occurrences are anchored at Start, so a
// daily trigger anchored at 10:00 keeps firing at 10:00 regardless of how
// long individual runs take.
type IntervalTrigger struct {
	Start time.Time
	End   time.Time
	Every time.Duration
}

// Next implements Trigger
func (iv IntervalTrigger) Next(t time.Time) (time.Time, bool) {
	if iv.Every <= 0 {
		return time.Time{}, false
	}

	next := iv.Start
	if !next.After(t) {
		steps := t.Sub(iv.Start)/iv.Every + 1
		next = iv.Start.Add(steps * iv.Every)
	}

	if !iv.End.IsZero() && next.After(iv.End) {
		return time.Time{}, false
	}
	return next, true
}

// CronTrigger fires according to a standard five-field cron expression.
type CronTrigger struct {
	schedule cron.Schedule
}

// NewCronTrigger parses a cron expression into a trigger
func NewCronTrigger(expr string) (CronTrigger, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return CronTrigger{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return CronTrigger{schedule: schedule}, nil
}

// Next implements Trigger
func (c CronTrigger) Next(t time.Time) (time.Time, bool) {
	next := c.schedule.Next(t)
	return next, !next.IsZero()
}
