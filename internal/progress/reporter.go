package progress

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ProgressInfo contains detailed progress information for one run
type ProgressInfo struct {
	TotalTasks        int
	CompletedTasks    int
	FailedTasks       int
	SkippedTasks      int
	RunningTasks      int
	ElapsedTime       time.Duration
	EstimatedTimeLeft time.Duration
	// TaskBreakdown is keyed by task type ("build", "push").
	TaskBreakdown map[string]TaskStats
}

// TaskStats provides statistics for each task type
type TaskStats struct {
	Total        int
	Completed    int
	Failed       int
	Skipped      int
	Running      int
	Pending      int
	RunningTasks []string
}

// Reporter handles progress reporting
type Reporter struct {
	startTime      time.Time
	lastReportTime time.Time
	reportInterval time.Duration
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		startTime:      time.Now(),
		lastReportTime: time.Now(),
		reportInterval: 5 * time.Second,
	}
}

// ShouldReport returns true if it's time to report progress
func (r *Reporter) ShouldReport() bool {
	return time.Since(r.lastReportTime) >= r.reportInterval
}

// Report generates a formatted progress report
func (r *Reporter) Report(info ProgressInfo) string {
	r.lastReportTime = time.Now()

	var sb strings.Builder

	percentage := 0.0
	if info.TotalTasks > 0 {
		percentage = float64(info.CompletedTasks) / float64(info.TotalTasks) * 100
	}

	sb.WriteString(fmt.Sprintf("Progress: %d/%d tasks completed (%.1f%%)",
		info.CompletedTasks, info.TotalTasks, percentage))
	sb.WriteString(fmt.Sprintf(" | Elapsed: %v", info.ElapsedTime.Round(time.Second)))
	if info.EstimatedTimeLeft > 0 {
		sb.WriteString(fmt.Sprintf(" | ETA: %s", FormatDuration(info.EstimatedTimeLeft)))
	}

	types := make([]string, 0, len(info.TaskBreakdown))
	for t := range info.TaskBreakdown {
		types = append(types, t)
	}
	sort.Strings(types)

	if len(types) > 0 {
		sb.WriteString("\n   Task Status:")
	}
	for _, taskType := range types {
		stats := info.TaskBreakdown[taskType]
		if stats.Total == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n      %s: %d/%d completed", taskType, stats.Completed, stats.Total))
		if stats.Failed > 0 {
			sb.WriteString(fmt.Sprintf(", %d failed", stats.Failed))
		}
		if stats.Skipped > 0 {
			sb.WriteString(fmt.Sprintf(", %d skipped", stats.Skipped))
		}
		if stats.Running > 0 {
			sb.WriteString(fmt.Sprintf(", %d running", stats.Running))
			if len(stats.RunningTasks) > 0 {
				sb.WriteString(fmt.Sprintf(" (%s)", strings.Join(stats.RunningTasks, ", ")))
			}
		}
		if stats.Pending > 0 {
			sb.WriteString(fmt.Sprintf(", %d pending", stats.Pending))
		}
	}

	return sb.String()
}

// Summary formats the final line of a run.
func (r *Reporter) Summary(info ProgressInfo) string {
	succeeded := info.CompletedTasks - info.FailedTasks - info.SkippedTasks
	if info.FailedTasks == 0 && info.SkippedTasks == 0 {
		return fmt.Sprintf("Execution completed: %d/%d tasks successful in %s",
			succeeded, info.TotalTasks, FormatDuration(info.ElapsedTime))
	}
	return fmt.Sprintf("Execution completed: %d successful, %d failed, %d skipped in %s",
		succeeded, info.FailedTasks, info.SkippedTasks, FormatDuration(info.ElapsedTime))
}

// ReportTaskStart reports the start of a task
func (r *Reporter) ReportTaskStart(taskType, description string) string {
	return fmt.Sprintf("Starting %s: %s", taskType, description)
}

// ReportTaskComplete reports task completion
func (r *Reporter) ReportTaskComplete(taskType, description string, duration time.Duration, success bool) string {
	status := "COMPLETED"
	if !success {
		status = "FAILED"
	}
	return fmt.Sprintf("%s %s: %s (took %s)", status, taskType, description, FormatDuration(duration))
}

// CalculateETA estimates time remaining based on current progress
func CalculateETA(completed, total int, elapsed time.Duration) time.Duration {
	if completed <= 0 || total <= 0 || completed >= total {
		return 0
	}

	averageTimePerTask := elapsed / time.Duration(completed)
	remainingTasks := total - completed
	return averageTimePerTask * time.Duration(remainingTasks)
}

// FormatDuration formats a duration in a user-friendly way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
