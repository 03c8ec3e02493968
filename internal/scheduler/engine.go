// Package scheduler provides the in-process job engine: a table of
// (job id -> trigger, callback) registrations whose callbacks run on
// background goroutines, independent of request handling.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc is the callback invoked on every trigger fire
type JobFunc func(ctx context.Context) error

// Event describes the outcome of a single job fire
type Event struct {
	JobID string
	RunAt time.Time
	Err   error
}

// Listener receives job lifecycle events. Implementations must not block;
// the engine calls them synchronously after each fire.
type Listener interface {
	HandleJobEvent(e Event)
}

// JobStatus is a read-only snapshot of a registered job
type JobStatus struct {
	ID      string
	NextRun time.Time
}

type job struct {
	id      string
	trigger Trigger
	fn      JobFunc
	cancel  context.CancelFunc
	nextRun time.Time

	// serializes fires so a job never runs concurrently with itself. Shared
	// with the replacement on upsert, so serialization holds per job id even
	// across a swap with an in-flight run.
	runMu *sync.Mutex
}

// Engine owns the job table and the goroutines that wait on triggers.
// All mutations of the table are serialized by the engine mutex.
type Engine struct {
	mu        sync.Mutex
	jobs      map[string]*job
	listeners []Listener
	logger    *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

// New creates a running engine
func New(logger *zap.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		jobs:    make(map[string]*job),
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Subscribe registers a listener for job events
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// AddJob registers a job and starts waiting on its trigger. It fails with
// ErrDuplicateJob when the id is already registered.
func (e *Engine) AddJob(id string, trigger Trigger, fn JobFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrEngineStopped
	}
	if _, exists := e.jobs[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, id)
	}

	e.addLocked(id, trigger, fn, nil)
	return nil
}

// UpsertJob atomically replaces any existing registration with the same id.
// The swap happens under the engine lock, so there is no window in which the
// job id is observable as unregistered. The replacement inherits the old
// registration's run lock: a fire of the new registration waits for any
// in-flight run of the old one.
func (e *Engine) UpsertJob(id string, trigger Trigger, fn JobFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrEngineStopped
	}

	var runMu *sync.Mutex
	if existing, exists := e.jobs[id]; exists {
		existing.cancel()
		delete(e.jobs, id)
		runMu = existing.runMu
	}

	e.addLocked(id, trigger, fn, runMu)
	return nil
}

// RemoveJob unregisters a job. Future fires are cancelled; an in-flight
// execution runs to completion.
func (e *Engine) RemoveJob(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	j, exists := e.jobs[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	j.cancel()
	delete(e.jobs, id)
	return nil
}

// GetJob returns a snapshot of the registered job, if any
func (e *Engine) GetJob(id string) (JobStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	j, exists := e.jobs[id]
	if !exists {
		return JobStatus{}, false
	}
	return JobStatus{ID: j.id, NextRun: j.nextRun}, true
}

// Len returns the number of registered jobs
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}

// Stop cancels all jobs and waits for in-flight executions to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.cancel()
	e.jobs = make(map[string]*job)
	e.mu.Unlock()

	e.wg.Wait()
}

// addLocked registers the job and launches its wait loop; e.mu must be held.
// A nil runMu starts the job with a fresh run lock.
func (e *Engine) addLocked(id string, trigger Trigger, fn JobFunc, runMu *sync.Mutex) {
	if runMu == nil {
		runMu = &sync.Mutex{}
	}
	ctx, cancel := context.WithCancel(e.baseCtx)
	j := &job{id: id, trigger: trigger, fn: fn, cancel: cancel, runMu: runMu}

	if next, ok := trigger.Next(time.Now()); ok {
		j.nextRun = next
	}
	e.jobs[id] = j

	e.wg.Add(1)
	go e.runJob(ctx, j)
}

// runJob waits on the trigger and fires the callback once per occurrence.
// Occurrences are computed from the previous scheduled time, not from
// wall-clock completion, so a slow run delays but never drops fires.
func (e *Engine) runJob(ctx context.Context, j *job) {
	defer e.wg.Done()

	after := time.Now()
	for {
		next, ok := j.trigger.Next(after)
		if !ok {
			e.finishJob(j)
			return
		}
		e.setNextRun(j, next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		e.fire(j, next)
		after = next
	}
}

// fire runs the callback, serialized against other fires of the same job,
// and reports the outcome to listeners. A panicking or failing callback
// never unregisters the job or takes the engine down.
func (e *Engine) fire(j *job, at time.Time) {
	j.runMu.Lock()
	err := e.safeInvoke(j)
	j.runMu.Unlock()

	if err != nil {
		e.logger.Error("job failed", zap.String("job_id", j.id), zap.Error(err))
	}
	e.emit(Event{JobID: j.id, RunAt: at, Err: err})
}

func (e *Engine) safeInvoke(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	// Callbacks get the engine context, not the per-job one: removing a job
	// cancels future fires but lets an in-flight execution run to completion
	return j.fn(e.baseCtx)
}

func (e *Engine) emit(event Event) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("job listener panicked",
						zap.String("job_id", event.JobID), zap.Any("error", r))
				}
			}()
			l.HandleJobEvent(event)
		}()
	}
}

func (e *Engine) setNextRun(j *job, next time.Time) {
	e.mu.Lock()
	j.nextRun = next
	e.mu.Unlock()
}

// finishJob drops an exhausted trigger's registration
func (e *Engine) finishJob(j *job) {
	e.mu.Lock()
	if current, exists := e.jobs[j.id]; exists && current == j {
		delete(e.jobs, j.id)
	}
	e.mu.Unlock()

	e.logger.Debug("job trigger exhausted", zap.String("job_id", j.id))
}
