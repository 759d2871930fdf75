package plugin

import (
	"context"
	"fmt"
	"sort"

	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/module"
)

// Context dispatches module operations to the provider responsible for each
// module type. It is shared read-only by all tasks of a run.
type Context struct {
	ProjectRoot string
	Log         *logger.Entry
	Modules     *module.Registry

	providers []Provider
	byType    map[string]Provider
}

// NewContext creates a plugin context. Two providers may not claim the same
// module type. A nil log uses the root entry of the global logger.
func NewContext(projectRoot string, log *logger.Entry, modules *module.Registry, providers ...Provider) (*Context, error) {
	if log == nil {
		log = logger.GetLogger().Root()
	}
	c := &Context{
		ProjectRoot: projectRoot,
		Log:         log,
		Modules:     modules,
		providers:   providers,
		byType:      make(map[string]Provider),
	}
	for _, p := range providers {
		for _, t := range p.ModuleTypes() {
			if other, ok := c.byType[t]; ok {
				return nil, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
					fmt.Sprintf("Module type %s is handled by both %s and %s", t, other.Name(), p.Name()),
					"Register providers")
			}
			c.byType[t] = p
		}
	}
	return c, nil
}

// Providers returns the registered providers in registration order.
func (c *Context) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// ProviderFor returns the provider for a module.
func (c *Context) ProviderFor(m *module.Module) (Provider, error) {
	p, ok := c.byType[m.Type]
	if !ok {
		return nil, gerrors.NewUnknownModuleTypeError(m.Name, m.Type)
	}
	return p, nil
}

// GetModuleBuildStatus asks the module's provider whether version is built.
func (c *Context) GetModuleBuildStatus(ctx context.Context, m *module.Module, version module.TreeVersion) (BuildStatus, error) {
	p, err := c.ProviderFor(m)
	if err != nil {
		return BuildStatus{}, err
	}
	return p.GetModuleBuildStatus(ctx, BuildStatusParams{Module: m, Version: version})
}

// BuildModule dispatches a build to the module's provider.
func (c *Context) BuildModule(ctx context.Context, params BuildModuleParams) (BuildResult, error) {
	p, err := c.ProviderFor(params.Module)
	if err != nil {
		return BuildResult{}, err
	}
	logger.Op.WithFields(map[string]interface{}{
		"module":   params.Module.Name,
		"provider": p.Name(),
		"version":  params.Version.String(),
	}).Debug("Dispatching build")
	return p.BuildModule(ctx, params)
}

// PushModule dispatches a publish to the provider of params.ModuleName.
func (c *Context) PushModule(ctx context.Context, params PushModuleParams) (PushResult, error) {
	m, err := c.Modules.Get(params.ModuleName)
	if err != nil {
		return PushResult{}, err
	}
	p, err := c.ProviderFor(m)
	if err != nil {
		return PushResult{}, err
	}
	params.Module = m
	logger.Op.WithFields(map[string]interface{}{
		"module":   m.Name,
		"provider": p.Name(),
	}).Debug("Dispatching push")
	return p.PushModule(ctx, params)
}

// EnvironmentStatus collects the status of every provider, keyed by provider name.
func (c *Context) EnvironmentStatus(ctx context.Context) (map[string]EnvironmentStatus, error) {
	out := make(map[string]EnvironmentStatus, len(c.providers))
	for _, p := range c.providers {
		status, err := p.GetEnvironmentStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get environment status from %s: %w", p.Name(), err)
		}
		out[p.Name()] = status
	}
	return out, nil
}

// ConfigureEnvironment configures every provider that reports itself unconfigured.
func (c *Context) ConfigureEnvironment(ctx context.Context) error {
	statuses, err := c.EnvironmentStatus(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	byName := make(map[string]Provider, len(c.providers))
	for _, p := range c.providers {
		byName[p.Name()] = p
	}

	for _, name := range names {
		status := statuses[name]
		if status.Configured {
			continue
		}
		entry := c.Log.Info(name, "Configuring environment")
		if err := byName[name].ConfigureEnvironment(ctx, ConfigureParams{Status: status, LogEntry: entry}); err != nil {
			entry.SetError(gerrors.DisplayErrorSummary(err))
			return err
		}
		entry.SetSuccess("Configured")
	}
	return nil
}
