package task

import (
	"context"
	"errors"

	"github.com/edvald/garden-1/internal/module"
)

// Type discriminates task variants.
type Type string

const (
	TypeBuild Type = "build"
	TypePush  Type = "push"
)

// ErrUnversioned is returned when a task value was not created through its factory.
var ErrUnversioned = errors.New("task has no version; create it with its factory")

// Task is a unit of work the scheduler resolves and processes. Implementations
// are immutable once returned by their factory, so they are safe to use from
// several goroutines.
type Task interface {
	Type() Type
	// Name is unique within the task type.
	Name() string
	// Key is "<type>.<name>", the identity the scheduler deduplicates on.
	Key() string
	Version() module.TreeVersion
	Description() string

	// Dependencies returns the tasks that must succeed before Process is called.
	Dependencies(ctx context.Context) ([]Task, error)
	// Process performs the work. Errors are returned unmodified.
	Process(ctx context.Context) (*Result, error)
}

// Key builds a task key from its type and name.
func Key(t Type, name string) string {
	return string(t) + "." + name
}

var (
	_ Task = (*BuildTask)(nil)
	_ Task = (*PushTask)(nil)
)
