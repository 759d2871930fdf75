package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(NewViper(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 6, s.MaxParallel)
	assert.Equal(t, time.Duration(0), s.TaskTimeout)
	assert.Empty(t, s.Cache.RedisURL)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, SettingsFileName), `
max-parallel: 2
task-timeout: 90s
cache:
  redis-url: redis://localhost:6379/0
`)
	t.Setenv("GARDEN_MAX_PARALLEL", "3")

	s, err := LoadSettings(NewViper(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, s.MaxParallel, "env overrides file")
	assert.Equal(t, 90*time.Second, s.TaskTimeout)
	assert.Equal(t, "redis://localhost:6379/0", s.Cache.RedisURL)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Setenv("GARDEN_MAX_PARALLEL", "0")

	_, err := LoadSettings(NewViper(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrValidation)
}

func TestLoadProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), `
project:
  name: demo
  environments:
    - name: local
      providers:
        - name: generic
`)
	writeFile(t, filepath.Join(root, "services", "api", ConfigFileName), `
module:
  name: api
  type: generic
  allow-push: true
  build:
    command: echo hi
    dependencies: [lib]
  image: api:latest
`)
	writeFile(t, filepath.Join(root, "lib", ConfigFileName), `
module:
  type: generic
`)
	// ignored locations
	writeFile(t, filepath.Join(root, ".hidden", ConfigFileName), "module:\n  name: hidden\n  type: generic\n")
	writeFile(t, filepath.Join(root, MetadataDir, "x", ConfigFileName), "module:\n  name: meta\n  type: generic\n")

	p, err := LoadProject(root)
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Config.Name)
	env, ok := p.DefaultEnvironment()
	require.True(t, ok)
	assert.Equal(t, "local", env.Name)

	require.Len(t, p.Modules, 2)
	assert.Equal(t, "api", p.Modules[0].Name)
	assert.True(t, p.Modules[0].AllowPush)
	assert.Equal(t, "echo hi", p.Modules[0].Build.Command)
	assert.Equal(t, []string{"lib"}, p.Modules[0].Build.Dependencies)
	assert.Equal(t, "api:latest", p.Modules[0].Spec["image"])
	assert.Equal(t, filepath.Join(p.Root, "services", "api"), p.Modules[0].Path)

	assert.Equal(t, "lib", p.Modules[1].Name, "name defaults to the directory")
}

func TestLoadProject_Missing(t *testing.T) {
	_, err := LoadProject(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrConfiguration)
}

func TestDiscoverModules_Duplicate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", ConfigFileName), "module:\n  name: api\n  type: generic\n")
	writeFile(t, filepath.Join(root, "b", ConfigFileName), "module:\n  name: api\n  type: generic\n")

	_, err := DiscoverModules(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared in both")
}

func TestReadModuleConfig_MissingType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), "module:\n  name: api\n")

	_, _, err := ReadModuleConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no type")
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, WriteYAML(path, ModuleFile{Module: &ModuleConfig{Name: "web", Type: "generic"}}))

	mc, ok, err := ReadModuleConfig(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "web", mc.Name)
	assert.Equal(t, "generic", mc.Type)
}
