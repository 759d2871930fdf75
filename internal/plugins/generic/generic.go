// Package generic implements the provider for modules built by a shell
// command and never published.
package generic

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/plugin"
	"github.com/edvald/garden-1/internal/store"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const (
	ProviderName = "generic"
	ModuleType   = "generic"

	pushNotSupported = "Push not supported for generic module"
)

// Provider builds generic modules and records each built version in a
// VersionStore.
type Provider struct {
	store store.VersionStore
	env   []string
}

var _ plugin.Provider = (*Provider)(nil)

// New creates a generic provider. Build commands inherit the process
// environment.
func New(versions store.VersionStore) *Provider {
	return &Provider{store: versions, env: os.Environ()}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) ModuleTypes() []string {
	return []string{ModuleType}
}

func (p *Provider) GetEnvironmentStatus(ctx context.Context) (plugin.EnvironmentStatus, error) {
	return plugin.EnvironmentStatus{Configured: true}, nil
}

func (p *Provider) ConfigureEnvironment(ctx context.Context, params plugin.ConfigureParams) error {
	return nil
}

// GetModuleBuildStatus reports ready when the stored version equals the
// requested one.
func (p *Provider) GetModuleBuildStatus(ctx context.Context, params plugin.BuildStatusParams) (plugin.BuildStatus, error) {
	rec, ok, err := p.store.GetBuildVersion(ctx, params.Module.Name)
	if err != nil {
		return plugin.BuildStatus{}, fmt.Errorf("failed to read build version of %s: %w", params.Module.Name, err)
	}
	return plugin.BuildStatus{Ready: ok && rec.Version == params.Version.VersionString}, nil
}

// BuildModule runs the module's build command, if any, in the module
// directory and records the version on success.
func (p *Provider) BuildModule(ctx context.Context, params plugin.BuildModuleParams) (plugin.BuildResult, error) {
	m := params.Module
	result := plugin.BuildResult{Fresh: true, Version: params.Version.VersionString}

	if command := strings.TrimSpace(m.Build.Command); command != "" {
		if params.LogEntry != nil {
			params.LogEntry.Info("", "Running build command")
		}
		output, err := p.run(ctx, m.Path, command)
		result.BuildLog = output
		if err != nil {
			logger.Op.WithFields(map[string]interface{}{
				"module":  m.Name,
				"command": command,
			}).WithError(err).Debug("Build command failed")
			return result, fmt.Errorf("build command for module %s failed: %w", m.Name, err)
		}
	}

	rec := store.BuildRecord{Version: params.Version.VersionString, BuiltAt: time.Now()}
	if err := p.store.SetBuildVersion(ctx, m.Name, rec); err != nil {
		return result, fmt.Errorf("failed to record build version of %s: %w", m.Name, err)
	}
	return result, nil
}

// PushModule declines; generic modules have nowhere to be published.
func (p *Provider) PushModule(ctx context.Context, params plugin.PushModuleParams) (plugin.PushResult, error) {
	return plugin.PushResult{Pushed: false, Message: pushNotSupported}, nil
}

func (p *Provider) run(ctx context.Context, dir, command string) (string, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "build")
	if err != nil {
		return "", fmt.Errorf("failed to parse build command: %w", err)
	}

	var out bytes.Buffer
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(p.env...)),
		interp.StdIO(nil, &out, &out),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		if exitStatus, ok := interp.IsExitStatus(err); ok {
			return out.String(), fmt.Errorf("exit status %d", int(exitStatus))
		}
		return out.String(), err
	}
	return out.String(), nil
}
