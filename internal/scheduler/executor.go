package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/progress"
	"github.com/edvald/garden-1/internal/task"
	"github.com/google/uuid"
)

// ErrTasksFailed is returned by Execute when at least one task failed.
var ErrTasksFailed = errors.New("one or more tasks failed")

// ErrTaskTimeout is wrapped into the result of a task that exceeded TaskTimeout.
var ErrTaskTimeout = errors.New("task timed out")

// ExecutorConfig contains configuration for the executor
type ExecutorConfig struct {
	// MaxParallelTasks is the maximum number of tasks to process in parallel
	MaxParallelTasks int

	// TaskTimeout bounds a single Process call. Zero means no limit.
	TaskTimeout time.Duration

	// ProgressInterval is how often progress is logged. Zero disables it.
	ProgressInterval time.Duration
}

// DefaultExecutorConfig returns a default configuration
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		MaxParallelTasks: 6,
		TaskTimeout:      0,
		ProgressInterval: 5 * time.Second,
	}
}

// RunResult contains the results of one run
type RunResult struct {
	RunID    string
	Results  map[string]*task.Result
	Success  bool
	Duration time.Duration
}

// Failed returns the failed results sorted by key.
func (r *RunResult) Failed() []*task.Result {
	return r.filter(func(res *task.Result) bool { return res.Status == task.StatusFailed })
}

// Skipped returns the results skipped because a dependency failed, sorted by key.
func (r *RunResult) Skipped() []*task.Result {
	return r.filter(func(res *task.Result) bool {
		return res.Status == task.StatusSkipped && res.SkipReason == task.SkipReasonDependencyFailed
	})
}

// Sorted returns all results sorted by key.
func (r *RunResult) Sorted() []*task.Result {
	return r.filter(func(*task.Result) bool { return true })
}

func (r *RunResult) filter(keep func(*task.Result) bool) []*task.Result {
	var out []*task.Result
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Executor processes a TaskGraph. A task is processed once all of its
// dependencies succeeded; dependents of a failed task are recorded as skipped.
type Executor struct {
	graph   *TaskGraph
	config  *ExecutorConfig
	workers chan struct{}

	mutex     sync.RWMutex
	results   map[string]*task.Result
	remaining map[string]int
	scheduled map[string]bool
	running   map[string]bool

	ctx       context.Context
	wg        sync.WaitGroup
	startTime time.Time
	finished  chan struct{}
}

// NewExecutor creates a new executor
func NewExecutor(graph *TaskGraph, config *ExecutorConfig) *Executor {
	if config == nil {
		config = DefaultExecutorConfig()
	}
	cfg := *config
	if cfg.MaxParallelTasks < 1 {
		cfg.MaxParallelTasks = 1
	}

	return &Executor{
		graph:     graph,
		config:    &cfg,
		workers:   make(chan struct{}, cfg.MaxParallelTasks),
		results:   make(map[string]*task.Result),
		remaining: make(map[string]int),
		scheduled: make(map[string]bool),
		running:   make(map[string]bool),
		finished:  make(chan struct{}),
	}
}

// Execute runs the graph to completion
func (e *Executor) Execute(ctx context.Context) (*RunResult, error) {
	e.startTime = time.Now()
	e.ctx = ctx
	runID := uuid.NewString()

	order, err := e.graph.TopologicalSort()
	if err != nil {
		return e.buildResult(runID), fmt.Errorf("invalid task graph: %w", err)
	}

	var roots []string
	e.mutex.Lock()
	for _, key := range order {
		e.remaining[key] = len(e.graph.GetDependencies(key))
		if e.remaining[key] == 0 {
			roots = append(roots, key)
		}
	}
	e.mutex.Unlock()

	logger.Op.WithFields(map[string]interface{}{
		"run_id":       runID,
		"tasks":        len(order),
		"max_parallel": e.config.MaxParallelTasks,
	}).Debug("Starting task run")

	if e.config.ProgressInterval > 0 {
		go e.logProgress()
	}

	for _, key := range roots {
		e.scheduleNode(key)
	}

	e.wg.Wait()
	close(e.finished)

	e.logFinalProgress()

	res := e.buildResult(runID)
	if !res.Success {
		return res, ErrTasksFailed
	}
	return res, nil
}

// GetProgress returns the current execution progress
func (e *Executor) GetProgress() (completed, total int) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return len(e.results), e.graph.Len()
}

// scheduleNode starts key unless it was already scheduled or resolved.
func (e *Executor) scheduleNode(key string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.scheduled[key] {
		return
	}
	e.scheduled[key] = true

	e.wg.Add(1)
	go e.executeNode(key)
}

// executeNode processes a single task
func (e *Executor) executeNode(key string) {
	defer e.wg.Done()

	t, ok := e.graph.GetTask(key)
	if !ok {
		return
	}

	// Acquire worker slot
	select {
	case e.workers <- struct{}{}:
		defer func() { <-e.workers }()
	case <-e.ctx.Done():
		e.complete(t, task.NewResult(t).Fail(e.ctx.Err()))
		return
	}

	if err := e.ctx.Err(); err != nil {
		e.complete(t, task.NewResult(t).Fail(err))
		return
	}

	e.setRunning(key, true)
	logger.Op.WithFields(map[string]interface{}{
		"task":    key,
		"version": t.Version().String(),
	}).Debug("Processing task")

	res, err := e.process(t)
	e.setRunning(key, false)

	if err != nil {
		logger.User.Errorf("%s failed: %v", t.Description(), err)
		res = task.NewResult(t).Fail(err)
	}
	e.complete(t, res)
}

// process calls t.Process, bounded by TaskTimeout when set. A result that
// arrives after the deadline is discarded.
func (e *Executor) process(t task.Task) (*task.Result, error) {
	if e.config.TaskTimeout <= 0 {
		return e.safeProcess(e.ctx, t)
	}

	ctx, cancel := context.WithTimeout(e.ctx, e.config.TaskTimeout)
	defer cancel()

	type outcome struct {
		res *task.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.safeProcess(ctx, t)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrTaskTimeout, t.Key(), e.config.TaskTimeout)
		}
		return nil, ctx.Err()
	}
}

func (e *Executor) safeProcess(ctx context.Context, t task.Task) (res *task.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Key(), r)
		}
	}()
	res, err = t.Process(ctx)
	if err == nil && res == nil {
		err = fmt.Errorf("task %s returned no result", t.Key())
	}
	return res, err
}

// complete records res and releases or skips the dependents of t.
func (e *Executor) complete(t task.Task, res *task.Result) {
	key := t.Key()

	e.mutex.Lock()
	e.results[key] = res
	e.mutex.Unlock()

	if res.Succeeded() {
		e.scheduleDependents(key)
	} else {
		e.skipDependents(key, key)
	}
}

// scheduleDependents schedules every dependent whose dependencies are now all done
func (e *Executor) scheduleDependents(key string) {
	var ready []string

	e.mutex.Lock()
	for _, dependent := range e.graph.GetDependents(key) {
		e.remaining[dependent]--
		if e.remaining[dependent] == 0 && !e.scheduled[dependent] {
			ready = append(ready, dependent)
		}
	}
	e.mutex.Unlock()

	sort.Strings(ready)
	for _, dependent := range ready {
		e.scheduleNode(dependent)
	}
}

// skipDependents records every transitive dependent of key as skipped
// because failedKey did not succeed.
func (e *Executor) skipDependents(key, failedKey string) {
	for _, dependent := range e.graph.GetDependents(key) {
		t, ok := e.graph.GetTask(dependent)
		if !ok {
			continue
		}

		e.mutex.Lock()
		if e.scheduled[dependent] {
			e.mutex.Unlock()
			continue
		}
		e.scheduled[dependent] = true
		e.results[dependent] = task.NewResult(t).Skip(task.SkipReasonDependencyFailed,
			fmt.Sprintf("dependency %s failed", failedKey))
		e.mutex.Unlock()

		logger.User.Skippedf("%s (dependency %s failed)", t.Description(), failedKey)
		e.skipDependents(dependent, failedKey)
	}
}

func (e *Executor) setRunning(key string, running bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if running {
		e.running[key] = true
	} else {
		delete(e.running, key)
	}
}

// buildResult constructs the final run result
func (e *Executor) buildResult(runID string) *RunResult {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	result := &RunResult{
		RunID:    runID,
		Results:  make(map[string]*task.Result, len(e.results)),
		Duration: time.Since(e.startTime),
		Success:  len(e.results) == e.graph.Len(),
	}

	for key, res := range e.results {
		result.Results[key] = res
		if !res.Succeeded() {
			result.Success = false
		}
	}
	return result
}

// logProgress provides periodic progress updates during execution
func (e *Executor) logProgress() {
	ticker := time.NewTicker(e.config.ProgressInterval)
	defer ticker.Stop()

	reporter := progress.NewReporter()
	for {
		select {
		case <-e.finished:
			return
		case <-ticker.C:
			logger.User.Info(reporter.Report(e.buildProgressInfo()))
		}
	}
}

// buildProgressInfo creates progress information broken down by task type
func (e *Executor) buildProgressInfo() progress.ProgressInfo {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	info := progress.ProgressInfo{
		TotalTasks:    e.graph.Len(),
		ElapsedTime:   time.Since(e.startTime),
		TaskBreakdown: make(map[string]progress.TaskStats),
	}

	for _, key := range e.graph.Keys() {
		t, ok := e.graph.GetTask(key)
		if !ok {
			continue
		}
		taskType := string(t.Type())
		stats := info.TaskBreakdown[taskType]
		stats.Total++

		if res, done := e.results[key]; done {
			info.CompletedTasks++
			stats.Completed++
			switch {
			case res.Status == task.StatusFailed:
				info.FailedTasks++
				stats.Failed++
			case res.SkipReason == task.SkipReasonDependencyFailed:
				info.SkippedTasks++
				stats.Skipped++
			}
		} else if e.running[key] {
			info.RunningTasks++
			stats.Running++
			stats.RunningTasks = append(stats.RunningTasks, t.Name())
		} else {
			stats.Pending++
		}
		info.TaskBreakdown[taskType] = stats
	}

	info.EstimatedTimeLeft = progress.CalculateETA(info.CompletedTasks, info.TotalTasks, info.ElapsedTime)
	return info
}

// logFinalProgress logs the final execution summary
func (e *Executor) logFinalProgress() {
	info := e.buildProgressInfo()
	summary := progress.NewReporter().Summary(info)
	if info.FailedTasks == 0 && info.SkippedTasks == 0 {
		logger.User.Success(summary)
	} else {
		logger.User.Error(summary)
	}
}
