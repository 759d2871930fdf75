package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gerrors "github.com/edvald/garden-1/internal/errors"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of project and module config files.
const ConfigFileName = "garden.yml"

// MetadataDir holds build state inside the project root and is never scanned.
const MetadataDir = ".garden"

// ProjectFile is the top level of a project garden.yml.
type ProjectFile struct {
	Project *ProjectConfig `yaml:"project,omitempty"`
}

// ProjectConfig describes a project.
type ProjectConfig struct {
	Name         string              `yaml:"name"`
	Environments []EnvironmentConfig `yaml:"environments,omitempty"`
}

// EnvironmentConfig names an environment and the providers it uses.
type EnvironmentConfig struct {
	Name      string           `yaml:"name"`
	Providers []ProviderConfig `yaml:"providers,omitempty"`
}

// ProviderConfig configures one provider within an environment.
type ProviderConfig struct {
	Name           string `yaml:"name"`
	DefaultProject string `yaml:"default-project,omitempty"`
}

// ModuleFile is the top level of a module garden.yml.
type ModuleFile struct {
	Module *ModuleConfig `yaml:"module,omitempty"`
}

// ModuleConfig describes a module. Keys not listed here are kept in Spec.
type ModuleConfig struct {
	Name        string                 `yaml:"name"`
	Type        string                 `yaml:"type"`
	Description string                 `yaml:"description,omitempty"`
	AllowPush   bool                   `yaml:"allow-push,omitempty"`
	Build       BuildConfig            `yaml:"build,omitempty"`
	Spec        map[string]interface{} `yaml:",inline"`

	// Path is the directory containing the module's garden.yml.
	Path string `yaml:"-"`
}

// BuildConfig describes how a module is built.
type BuildConfig struct {
	Command      string   `yaml:"command,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Outputs      []string `yaml:"outputs,omitempty"`
}

// Project is a loaded project with its discovered modules.
type Project struct {
	Root    string
	Config  ProjectConfig
	Modules []ModuleConfig
}

// DefaultEnvironment returns the first configured environment, if any.
func (p *Project) DefaultEnvironment() (EnvironmentConfig, bool) {
	if len(p.Config.Environments) == 0 {
		return EnvironmentConfig{}, false
	}
	return p.Config.Environments[0], true
}

// LoadProject reads the project garden.yml in root and discovers module configs
// below it.
func LoadProject(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	path := filepath.Join(abs, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gerrors.NewConfigNotFoundError(abs)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, invalidConfig(path, err)
	}
	if pf.Project == nil {
		return nil, gerrors.NewConfigNotFoundError(abs).
			WithTroubleshooting(fmt.Sprintf("Add a 'project' section to %s", path))
	}

	modules, err := DiscoverModules(abs)
	if err != nil {
		return nil, err
	}

	return &Project{Root: abs, Config: *pf.Project, Modules: modules}, nil
}

// DiscoverModules walks root for garden.yml files that declare a module.
// Hidden directories and the metadata dir are skipped. Results are sorted by name.
func DiscoverModules(root string) ([]ModuleConfig, error) {
	var modules []ModuleConfig
	seen := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == MetadataDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != ConfigFileName {
			return nil
		}

		mc, ok, err := ReadModuleConfig(filepath.Dir(path))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if prev, dup := seen[mc.Name]; dup {
			return gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
				fmt.Sprintf("Module %s is declared in both %s and %s", mc.Name, prev, mc.Path),
				"Discover modules")
		}
		seen[mc.Name] = mc.Path
		modules = append(modules, *mc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

// ReadModuleConfig reads dir/garden.yml. ok is false when the file is missing
// or has no module section.
func ReadModuleConfig(dir string) (*ModuleConfig, bool, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var mf ModuleFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, false, invalidConfig(path, err)
	}
	if mf.Module == nil {
		return nil, false, nil
	}

	mc := mf.Module
	mc.Path = dir
	if mc.Name == "" {
		mc.Name = filepath.Base(dir)
	}
	if mc.Type == "" {
		return nil, false, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
			fmt.Sprintf("Module %s in %s has no type", mc.Name, path), "Read module config")
	}
	return mc, true, nil
}

// WriteYAML marshals v to path with two-space indentation.
func WriteYAML(path string, v interface{}) error {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func invalidConfig(path string, err error) error {
	return gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
		fmt.Sprintf("Invalid YAML in %s", path), "Parse config").
		WithContext("path", path).
		WithOriginalError(err)
}
