package module

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/edvald/garden-1/internal/config"
	gerrors "github.com/edvald/garden-1/internal/errors"
)

// Registry holds the modules of a project and memoizes their versions.
type Registry struct {
	modules map[string]*Module

	mu       sync.Mutex
	versions map[string]TreeVersion
}

// NewRegistry creates a registry. Every build dependency must name a module
// in the set.
func NewRegistry(modules ...*Module) (*Registry, error) {
	r := &Registry{
		modules:  make(map[string]*Module, len(modules)),
		versions: make(map[string]TreeVersion),
	}
	for _, m := range modules {
		if _, dup := r.modules[m.Name]; dup {
			return nil, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
				fmt.Sprintf("Module %s is declared more than once", m.Name), "Register modules")
		}
		r.modules[m.Name] = m
	}
	for _, m := range modules {
		for _, dep := range m.Build.Dependencies {
			if _, ok := r.modules[dep]; !ok {
				return nil, gerrors.NewModuleNotFoundError(dep).
					WithContext("dependant", m.Name).
					WithTroubleshooting(fmt.Sprintf("Remove %s from the build dependencies of %s", dep, m.Name))
			}
		}
	}
	return r, nil
}

// NewRegistryFromProject builds a registry from a loaded project.
func NewRegistryFromProject(p *config.Project) (*Registry, error) {
	modules := make([]*Module, 0, len(p.Modules))
	for _, mc := range p.Modules {
		modules = append(modules, FromConfig(mc))
	}
	return NewRegistry(modules...)
}

// Get returns the named module.
func (r *Registry) Get(name string) (*Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, gerrors.NewModuleNotFoundError(name)
	}
	return m, nil
}

// Select returns the named modules, or every module sorted by name when
// names is empty.
func (r *Registry) Select(names []string) ([]*Module, error) {
	if len(names) == 0 {
		return r.Modules(), nil
	}
	out := make([]*Module, 0, len(names))
	for _, name := range names {
		m, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Modules returns all modules sorted by name.
func (r *Registry) Modules() []*Module {
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BuildDependencies returns the modules m declares as build dependencies, in
// declaration order.
func (r *Registry) BuildDependencies(m *Module) ([]*Module, error) {
	deps := make([]*Module, 0, len(m.Build.Dependencies))
	for _, name := range m.Build.Dependencies {
		dep, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// Version returns the tree version of m. The result covers m's files and the
// versions of its build dependencies, and is memoized for the registry's lifetime.
func (r *Registry) Version(ctx context.Context, m *Module) (TreeVersion, error) {
	return r.version(ctx, m, nil)
}

func (r *Registry) version(ctx context.Context, m *Module, stack []string) (TreeVersion, error) {
	if err := ctx.Err(); err != nil {
		return TreeVersion{}, err
	}

	r.mu.Lock()
	v, ok := r.versions[m.Name]
	r.mu.Unlock()
	if ok {
		return v, nil
	}

	for _, name := range stack {
		if name == m.Name {
			return TreeVersion{}, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
				fmt.Sprintf("Circular build dependency: %s -> %s", strings.Join(stack, " -> "), m.Name),
				"Compute module version")
		}
	}
	stack = append(stack, m.Name)

	deps, err := r.BuildDependencies(m)
	if err != nil {
		return TreeVersion{}, err
	}
	depVersions := make(map[string]string, len(deps))
	for _, dep := range deps {
		dv, err := r.version(ctx, dep, stack)
		if err != nil {
			return TreeVersion{}, err
		}
		depVersions[dep.Name] = dv.VersionString
	}

	files, err := hashFiles(ctx, m.Path, m.Build.Outputs)
	if err != nil {
		return TreeVersion{}, fmt.Errorf("failed to hash module %s: %w", m.Name, err)
	}

	v = TreeVersion{VersionString: computeVersionString(m, files, depVersions)}

	r.mu.Lock()
	if cached, ok := r.versions[m.Name]; ok {
		v = cached
	} else {
		r.versions[m.Name] = v
	}
	r.mu.Unlock()
	return v, nil
}
