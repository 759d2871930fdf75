package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EntryStatus is the terminal state of a log Entry.
type EntryStatus int

const (
	StatusActive EntryStatus = iota
	StatusSuccess
	StatusWarn
	StatusError
	StatusDone
)

// String returns a string representation of the EntryStatus
func (s EntryStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuccess:
		return "success"
	case StatusWarn:
		return "warn"
	case StatusError:
		return "error"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Entry is a hierarchical log handle. Info creates a child entry that can later
// be resolved with SetSuccess, SetWarn, SetError or Stop. Each task owns its
// child entry, so parallel tasks never share one. Parents do not retain their
// children.
type Entry struct {
	logger  *logrus.Logger
	section string
	msg     string
	start   time.Time

	mu     sync.Mutex
	status EntryStatus
	result string
}

// NewEntry creates a root entry writing to the given logger.
func NewEntry(l *logrus.Logger) *Entry {
	return &Entry{logger: l, start: time.Now()}
}

func (e *Entry) line(status EntryStatus) *logrus.Entry {
	return e.logger.WithFields(logrus.Fields{
		"log_type": string(UserLog),
		"section":  e.section,
		"status":   status.String(),
	})
}

// Info logs msg under section and returns the child entry tracking it. An empty
// section inherits the parent's.
func (e *Entry) Info(section, msg string) *Entry {
	if section == "" {
		section = e.section
	}
	child := &Entry{
		logger:  e.logger,
		section: section,
		msg:     msg,
		start:   time.Now(),
	}

	child.line(StatusActive).Info(msg)
	return child
}

// SetSuccess marks the entry successful. msg is appended to the original message.
func (e *Entry) SetSuccess(msg string) {
	e.resolve(StatusSuccess, msg)
}

// SetWarn marks the entry with a warning.
func (e *Entry) SetWarn(msg string) {
	e.resolve(StatusWarn, msg)
}

// SetError marks the entry failed.
func (e *Entry) SetError(msg string) {
	e.resolve(StatusError, msg)
}

// Stop closes the entry without a verdict. It is a no-op on resolved entries.
func (e *Entry) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusActive {
		e.status = StatusDone
	}
}

func (e *Entry) resolve(status EntryStatus, msg string) {
	e.mu.Lock()
	e.status = status
	e.result = msg
	e.mu.Unlock()

	text := e.msg
	if msg != "" {
		text = fmt.Sprintf("%s → %s", e.msg, msg)
	}

	line := e.line(status)
	switch status {
	case StatusWarn:
		line.Warn(text)
	case StatusError:
		line.Error(text)
	default:
		line.Info(text)
	}
}

// Section returns the section the entry logs under.
func (e *Entry) Section() string {
	return e.section
}

// Message returns the message the entry was created with.
func (e *Entry) Message() string {
	return e.msg
}

// Status returns the current status of the entry.
func (e *Entry) Status() EntryStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Result returns the message passed when the entry was resolved.
func (e *Entry) Result() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Duration returns the time elapsed since the entry was created.
func (e *Entry) Duration() time.Duration {
	return time.Since(e.start)
}
