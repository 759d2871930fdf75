package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edvald/garden-1/internal/module"
	"github.com/edvald/garden-1/internal/task"
)

// stubTask is a task with controllable dependencies and behaviour.
type stubTask struct {
	taskType task.Type
	name     string
	version  string
	deps     []task.Task
	depsErr  error
	delay    time.Duration
	fail     bool
	// ignoreCancel keeps the task sleeping past context cancellation.
	ignoreCancel bool

	mu        sync.Mutex
	processed int
	onProcess func(key string)
}

func newStub(name string, deps ...task.Task) *stubTask {
	return &stubTask{taskType: task.TypeBuild, name: name, version: "v-0000000001", deps: deps}
}

func (s *stubTask) Type() task.Type { return s.taskType }
func (s *stubTask) Name() string { return s.name }
func (s *stubTask) Key() string { return task.Key(s.taskType, s.name) }
func (s *stubTask) Description() string { return "stub " + s.name }
func (s *stubTask) Version() module.TreeVersion { return module.TreeVersion{VersionString: s.version} }

func (s *stubTask) Dependencies(ctx context.Context) ([]task.Task, error) {
	return s.deps, s.depsErr
}

func (s *stubTask) Process(ctx context.Context) (*task.Result, error) {
	s.mu.Lock()
	s.processed++
	s.mu.Unlock()

	if s.onProcess != nil {
		s.onProcess(s.Key())
	}

	if s.delay > 0 {
		if s.ignoreCancel {
			time.Sleep(s.delay)
		} else {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if s.fail {
		return nil, errors.New("stub failure: " + s.name)
	}
	res := task.NewResult(s)
	res.Status = task.StatusSuccess
	res.EndTime = time.Now()
	return res, nil
}

func (s *stubTask) processCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}
