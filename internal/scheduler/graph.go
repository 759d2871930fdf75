package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/edvald/garden-1/internal/task"
)

// ErrVersionConflict is returned when a task is added whose key is already in
// the graph with a different version. A run holds one version per key.
var ErrVersionConflict = errors.New("task version conflict")

// CycleError reports a dependency cycle found while resolving tasks.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// TaskGraph is the set of tasks for one run and the dependency edges between them.
type TaskGraph struct {
	mu         sync.RWMutex
	tasks      map[string]task.Task
	order      []string
	deps       map[string][]string
	dependents map[string][]string
}

// NewTaskGraph creates an empty graph.
func NewTaskGraph() *TaskGraph {
	return &TaskGraph{
		tasks:      make(map[string]task.Task),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddTask adds t and, recursively, everything it depends on. Tasks are
// deduplicated by key. On error the graph is partially populated and should
// be discarded.
func (g *TaskGraph) AddTask(ctx context.Context, t task.Task) error {
	if t == nil {
		return fmt.Errorf("task cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.add(ctx, t, nil)
}

func (g *TaskGraph) add(ctx context.Context, t task.Task, path []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := t.Key()
	for i, k := range path {
		if k == key {
			cycle := append(append([]string{}, path[i:]...), key)
			return &CycleError{Path: cycle}
		}
	}

	if existing, ok := g.tasks[key]; ok {
		if existing.Version() != t.Version() {
			return fmt.Errorf("%w: %s is already scheduled at %s, cannot add %s",
				ErrVersionConflict, key, existing.Version(), t.Version())
		}
		return nil
	}

	g.tasks[key] = t
	g.order = append(g.order, key)

	deps, err := t.Dependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies of %s: %w", key, err)
	}

	path = append(path, key)
	for _, dep := range deps {
		if err := g.add(ctx, dep, path); err != nil {
			return err
		}
		g.addEdge(key, dep.Key())
	}
	return nil
}

func (g *TaskGraph) addEdge(from, to string) {
	for _, existing := range g.deps[from] {
		if existing == to {
			return
		}
	}
	g.deps[from] = append(g.deps[from], to)
	g.dependents[to] = append(g.dependents[to], from)
}

// Len returns the number of tasks in the graph.
func (g *TaskGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tasks)
}

// GetTask returns the task with the given key.
func (g *TaskGraph) GetTask(key string) (task.Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tasks[key]
	return t, ok
}

// Keys returns task keys in the order they were added.
func (g *TaskGraph) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// GetDependencies returns the keys key depends on.
func (g *TaskGraph) GetDependencies(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.deps[key]...)
}

// GetDependents returns the keys that depend on key.
func (g *TaskGraph) GetDependents(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.dependents[key]...)
}

// TopologicalSort returns keys with every task after its dependencies. Ties
// are broken by key so the order is stable.
func (g *TaskGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inDegree := make(map[string]int, len(g.tasks))
	for key := range g.tasks {
		inDegree[key] = len(g.deps[key])
	}

	var ready []string
	for key, n := range inDegree {
		if n == 0 {
			ready = append(ready, key)
		}
	}
	sort.Strings(ready)

	result := make([]string, 0, len(g.tasks))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		result = append(result, key)

		var next []string
		for _, dependent := range g.dependents[key] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		ready = append(ready, next...)
		sort.Strings(ready)
	}

	if len(result) != len(g.tasks) {
		var remaining []string
		for key, n := range inDegree {
			if n > 0 {
				remaining = append(remaining, key)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{Path: remaining}
	}
	return result, nil
}

// Process runs every task in the graph. See Executor.
func (g *TaskGraph) Process(ctx context.Context, config *ExecutorConfig) (*RunResult, error) {
	return NewExecutor(g, config).Execute(ctx)
}
