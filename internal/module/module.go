package module

import (
	"time"

	"github.com/edvald/garden-1/internal/config"
)

// Module is a buildable unit of a project.
type Module struct {
	Name        string
	Type        string
	Path        string
	Description string
	AllowPush   bool
	Build       BuildSpec
	Spec        map[string]interface{}
}

// BuildSpec describes how a module is built.
type BuildSpec struct {
	Command string
	// Dependencies are names of modules that must be built first.
	Dependencies []string
	// Outputs are paths the build writes inside the module dir. They are
	// left out of the version.
	Outputs []string
}

// TreeVersion identifies the content of a module and its build dependencies.
// Equal version strings mean reprocessing can be skipped.
type TreeVersion struct {
	VersionString  string
	DirtyTimestamp *time.Time
}

// String returns the version string.
func (v TreeVersion) String() string {
	return v.VersionString
}

// IsZero reports whether the version was never computed.
func (v TreeVersion) IsZero() bool {
	return v.VersionString == ""
}

// FromConfig converts a module config into a Module.
func FromConfig(mc config.ModuleConfig) *Module {
	deps := make([]string, len(mc.Build.Dependencies))
	copy(deps, mc.Build.Dependencies)
	outputs := make([]string, len(mc.Build.Outputs))
	copy(outputs, mc.Build.Outputs)

	return &Module{
		Name:        mc.Name,
		Type:        mc.Type,
		Path:        mc.Path,
		Description: mc.Description,
		AllowPush:   mc.AllowPush,
		Build: BuildSpec{
			Command:      mc.Build.Command,
			Dependencies: deps,
			Outputs:      outputs,
		},
		Spec: mc.Spec,
	}
}
