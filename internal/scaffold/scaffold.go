// Package scaffold creates garden.yml files for a new project and its
// modules.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edvald/garden-1/internal/config"
	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/plugins/generic"
	"github.com/edvald/garden-1/internal/plugins/google"
	"github.com/edvald/garden-1/internal/validation"
)

// ModuleSpec is a module requested by name and type.
type ModuleSpec struct {
	Name string
	Type string
}

// Options controls what New writes.
type Options struct {
	ProjectRoot string
	// ProjectName defaults to the base name of ProjectRoot.
	ProjectName string
	// ModuleDirs are scanned for module directories, relative to ProjectRoot.
	ModuleDirs []string
	// Modules are created as subdirectories of ProjectRoot.
	Modules []ModuleSpec
	// DefaultType is the type given to modules found in ModuleDirs.
	DefaultType string
	Log         *logger.Entry
}

// PlannedModule is a module config about to be written.
type PlannedModule struct {
	Name   string
	Type   string
	Dir    string
	Config config.ModuleConfig
}

// Plan is the validated set of files New writes.
type Plan struct {
	ProjectRoot string
	ProjectName string
	Modules     []PlannedModule
}

// Summary reports what New did.
type Summary struct {
	ProjectName    string
	ProjectWritten bool
	Written        []string
	Skipped        []string
}

// ModuleTypes returns the module types New can create templates for.
func ModuleTypes() []string {
	types := make([]string, 0, len(moduleTemplates))
	for t := range moduleTemplates {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

var moduleTemplates = map[string]func(name string) map[string]interface{}{
	generic.ModuleType: func(string) map[string]interface{} {
		return nil
	},
	google.ModuleType: func(name string) map[string]interface{} {
		fn := name + "-function"
		return map[string]interface{}{
			"functions": []map[string]interface{}{
				{"name": fn, "entrypoint": camelCase(fn)},
			},
		}
	},
}

func defaultEnvironments() []config.EnvironmentConfig {
	return []config.EnvironmentConfig{
		{
			Name: "local",
			Providers: []config.ProviderConfig{
				{Name: generic.ProviderName},
			},
		},
		{
			Name: "google",
			Providers: []config.ProviderConfig{
				{Name: generic.ProviderName},
				{Name: google.ProviderName},
			},
		},
	}
}

// ParseModuleFlag parses a "name=type" pair.
func ParseModuleFlag(s string) (ModuleSpec, error) {
	name, typ, ok := strings.Cut(s, "=")
	name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
	if !ok || name == "" || typ == "" {
		return ModuleSpec{}, gerrors.NewParameterError(gerrors.CodeInvalidParameter,
			fmt.Sprintf("Invalid module %q, expected name=type", s),
			"Parse module option")
	}
	return ModuleSpec{Name: name, Type: typ}, nil
}

// PlanProject validates every name and scans module directories. It never
// writes to disk.
func PlanProject(opts Options) (*Plan, error) {
	root, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	projectName := strings.TrimSpace(opts.ProjectName)
	if projectName == "" {
		projectName = filepath.Base(root)
	}
	defaultType := opts.DefaultType
	if defaultType == "" {
		defaultType = generic.ModuleType
	}

	ids := []validation.NamedIdentifier{{Name: projectName, Kind: "project"}}
	var specs []PlannedModule

	for _, dir := range opts.ModuleDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		abs := filepath.Join(root, dir)
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return nil, gerrors.NewDirectoryNotFoundError(abs)
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", abs, err)
		}
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			specs = append(specs, PlannedModule{Name: e.Name(), Type: defaultType, Dir: filepath.Join(abs, e.Name())})
		}
	}
	for _, m := range opts.Modules {
		specs = append(specs, PlannedModule{Name: m.Name, Type: m.Type, Dir: filepath.Join(root, m.Name)})
	}

	seen := make(map[string]bool)
	for _, m := range specs {
		ids = append(ids, validation.NamedIdentifier{Name: m.Name, Kind: "module"})
	}
	if err := validation.ValidateAll(ids); err != nil {
		return nil, err
	}

	plan := &Plan{ProjectRoot: root, ProjectName: projectName}
	for _, m := range specs {
		if seen[m.Name] {
			return nil, gerrors.NewParameterError(gerrors.CodeInvalidParameter,
				fmt.Sprintf("Module %s is specified more than once", m.Name),
				"Plan modules")
		}
		seen[m.Name] = true

		template, ok := moduleTemplates[m.Type]
		if !ok {
			return nil, gerrors.NewUnknownModuleTypeError(m.Name, m.Type).
				WithTroubleshooting(fmt.Sprintf("Use one of: %s", strings.Join(ModuleTypes(), ", ")))
		}
		m.Config = config.ModuleConfig{
			Name:        m.Name,
			Type:        m.Type,
			Description: fmt.Sprintf("%s %s", titleize(m.Name), noCase(m.Type)),
			Spec:        template(m.Name),
		}
		plan.Modules = append(plan.Modules, m)
	}
	return plan, nil
}

// Apply writes the planned files. Existing module configs are left alone
// with a warning, as is an existing project config.
func Apply(plan *Plan, log *logger.Entry) (*Summary, error) {
	if log == nil {
		log = logger.GetLogger().Root()
	}
	summary := &Summary{ProjectName: plan.ProjectName}

	projectTask := log.Info("", fmt.Sprintf("Setting up project %s", plan.ProjectName))
	for _, m := range plan.Modules {
		moduleTask := projectTask.Info(m.Name, fmt.Sprintf("Initializing module %s", m.Name))

		if err := os.MkdirAll(m.Dir, 0o755); err != nil {
			moduleTask.SetError(err.Error())
			return summary, fmt.Errorf("failed to create module directory %s: %w", m.Dir, err)
		}
		path := filepath.Join(m.Dir, config.ConfigFileName)
		if exists(path) {
			moduleTask.SetWarn(fmt.Sprintf("Garden config file already exists for module %s, skipping", m.Dir))
			summary.Skipped = append(summary.Skipped, path)
			continue
		}
		mc := m.Config
		if err := config.WriteYAML(path, config.ModuleFile{Module: &mc}); err != nil {
			moduleTask.SetError(err.Error())
			return summary, err
		}
		moduleTask.SetSuccess("")
		summary.Written = append(summary.Written, path)
	}

	projectPath := filepath.Join(plan.ProjectRoot, config.ConfigFileName)
	if exists(projectPath) {
		projectTask.SetWarn(fmt.Sprintf("Project config %s already exists, skipping", projectPath))
		summary.Skipped = append(summary.Skipped, projectPath)
		return summary, nil
	}
	projectFile := config.ProjectFile{Project: &config.ProjectConfig{
		Name:         plan.ProjectName,
		Environments: defaultEnvironments(),
	}}
	if err := config.WriteYAML(projectPath, projectFile); err != nil {
		projectTask.SetError(err.Error())
		return summary, err
	}
	summary.ProjectWritten = true
	summary.Written = append(summary.Written, projectPath)
	projectTask.SetSuccess("")
	return summary, nil
}

// New plans and writes a project scaffold. Nothing is written when any
// name is invalid.
func New(opts Options) (*Summary, error) {
	plan, err := PlanProject(opts)
	if err != nil {
		return nil, err
	}
	return Apply(plan, opts.Log)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func noCase(s string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

func titleize(s string) string {
	s = noCase(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func camelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}
