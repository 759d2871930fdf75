package plugin

import (
	"context"

	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/module"
)

// Provider builds and publishes modules of the types it declares.
type Provider interface {
	Name() string
	ModuleTypes() []string

	GetEnvironmentStatus(ctx context.Context) (EnvironmentStatus, error)
	ConfigureEnvironment(ctx context.Context, params ConfigureParams) error

	GetModuleBuildStatus(ctx context.Context, params BuildStatusParams) (BuildStatus, error)
	BuildModule(ctx context.Context, params BuildModuleParams) (BuildResult, error)
	PushModule(ctx context.Context, params PushModuleParams) (PushResult, error)
}

// EnvironmentStatus reports whether a provider's environment is ready.
type EnvironmentStatus struct {
	Configured bool                   `json:"configured"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
}

// ConfigureParams is passed to ConfigureEnvironment with the status that
// triggered it.
type ConfigureParams struct {
	Status   EnvironmentStatus
	LogEntry *logger.Entry
}

// BuildStatusParams identifies the module version to check.
type BuildStatusParams struct {
	Module  *module.Module
	Version module.TreeVersion
}

// BuildStatus reports whether a module version is already built.
type BuildStatus struct {
	Ready bool
}

// BuildModuleParams is passed to BuildModule.
type BuildModuleParams struct {
	Module   *module.Module
	Version  module.TreeVersion
	LogEntry *logger.Entry
}

// BuildResult is the payload of a build.
type BuildResult struct {
	// Fresh is true when a build actually ran.
	Fresh    bool   `json:"fresh"`
	BuildLog string `json:"buildLog,omitempty"`
	Version  string `json:"version,omitempty"`
}

// PushModuleParams is passed to PushModule. Module is filled in by the Context
// from ModuleName.
type PushModuleParams struct {
	ModuleName string
	Module     *module.Module
	LogEntry   *logger.Entry
}

// PushResult is the payload of a publish. A provider that declines to publish
// returns Pushed=false with a message rather than an error.
type PushResult struct {
	Pushed  bool   `json:"pushed"`
	Message string `json:"message,omitempty"`
}
