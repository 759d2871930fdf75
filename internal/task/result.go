package task

import (
	"time"

	"github.com/edvald/garden-1/internal/plugin"
)

// Status is the outcome of a processed task.
type Status int

const (
	StatusSkipped Status = iota
	StatusSuccess
	StatusFailed
)

// String returns a string representation of the Status
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SkipReason explains a skipped result.
type SkipReason string

const (
	SkipReasonUpToDate         SkipReason = "up-to-date"
	SkipReasonDependencyFailed SkipReason = "dependency-failed"
)

// Result is the recorded outcome of one task.
type Result struct {
	Type    Type
	Name    string
	Key     string
	Version string

	Status     Status
	SkipReason SkipReason
	// Output is plugin.BuildResult for build tasks and plugin.PushResult for push tasks.
	Output  interface{}
	Message string
	Error   error

	StartTime time.Time
	EndTime   time.Time
}

// NewResult starts a result for t with its identity filled in.
func NewResult(t Task) *Result {
	return &Result{
		Type:      t.Type(),
		Name:      t.Name(),
		Key:       t.Key(),
		Version:   t.Version().String(),
		StartTime: time.Now(),
	}
}

func (r *Result) finish(status Status, output interface{}, msg string) *Result {
	r.Status = status
	r.Output = output
	r.Message = msg
	r.EndTime = time.Now()
	return r
}

// Skip marks the result skipped for reason.
func (r *Result) Skip(reason SkipReason, msg string) *Result {
	r.SkipReason = reason
	return r.finish(StatusSkipped, nil, msg)
}

// Fail marks the result failed with err.
func (r *Result) Fail(err error) *Result {
	r.Error = err
	return r.finish(StatusFailed, nil, err.Error())
}

// Duration returns how long the task ran.
func (r *Result) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Succeeded reports whether dependents may run: success and up-to-date skips count.
func (r *Result) Succeeded() bool {
	return r.Status == StatusSuccess ||
		(r.Status == StatusSkipped && r.SkipReason != SkipReasonDependencyFailed)
}

// BuildOutput returns the build payload, if any.
func (r *Result) BuildOutput() (plugin.BuildResult, bool) {
	out, ok := r.Output.(plugin.BuildResult)
	return out, ok
}

// PushOutput returns the push payload, if any.
func (r *Result) PushOutput() (plugin.PushResult, bool) {
	out, ok := r.Output.(plugin.PushResult)
	return out, ok
}
