package generic

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/edvald/garden-1/internal/module"
	"github.com/edvald/garden-1/internal/plugin"
	"github.com/edvald/garden-1/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, command string) (*Provider, *module.Module) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "worker")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	m := &module.Module{
		Name:  "worker",
		Type:  ModuleType,
		Path:  dir,
		Build: module.BuildSpec{Command: command},
	}
	return New(store.NewFileStore(root)), m
}

func TestBuildModule(t *testing.T) {
	p, m := setup(t, "echo building $GARDEN_TEST_VAR > out.txt\necho done")
	p.env = append(p.env, "GARDEN_TEST_VAR=worker")
	ctx := context.Background()
	version := module.TreeVersion{VersionString: "v-0123456789"}

	status, err := p.GetModuleBuildStatus(ctx, plugin.BuildStatusParams{Module: m, Version: version})
	require.NoError(t, err)
	assert.False(t, status.Ready)

	res, err := p.BuildModule(ctx, plugin.BuildModuleParams{Module: m, Version: version})
	require.NoError(t, err)
	assert.True(t, res.Fresh)
	assert.Equal(t, "done\n", res.BuildLog)
	assert.Equal(t, "v-0123456789", res.Version)

	data, err := os.ReadFile(filepath.Join(m.Path, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "building worker\n", string(data))

	status, err = p.GetModuleBuildStatus(ctx, plugin.BuildStatusParams{Module: m, Version: version})
	require.NoError(t, err)
	assert.True(t, status.Ready)

	other := module.TreeVersion{VersionString: "v-9999999999"}
	status, err = p.GetModuleBuildStatus(ctx, plugin.BuildStatusParams{Module: m, Version: other})
	require.NoError(t, err)
	assert.False(t, status.Ready)
}

func TestBuildModule_NoCommand(t *testing.T) {
	p, m := setup(t, "")
	version := module.TreeVersion{VersionString: "v-0123456789"}

	res, err := p.BuildModule(context.Background(), plugin.BuildModuleParams{Module: m, Version: version})
	require.NoError(t, err)
	assert.Empty(t, res.BuildLog)

	status, err := p.GetModuleBuildStatus(context.Background(), plugin.BuildStatusParams{Module: m, Version: version})
	require.NoError(t, err)
	assert.True(t, status.Ready)
}

func TestBuildModule_Failure(t *testing.T) {
	tests := []struct {
		name    string
		command string
		errMsg  string
	}{
		{name: "non-zero exit", command: "echo failing; exit 3", errMsg: "exit status 3"},
		{name: "parse error", command: "if then", errMsg: "failed to parse build command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m := setup(t, tt.command)
			version := module.TreeVersion{VersionString: "v-0123456789"}

			_, err := p.BuildModule(context.Background(), plugin.BuildModuleParams{Module: m, Version: version})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "build command for module worker failed")
			assert.Contains(t, err.Error(), tt.errMsg)

			status, err := p.GetModuleBuildStatus(context.Background(), plugin.BuildStatusParams{Module: m, Version: version})
			require.NoError(t, err)
			assert.False(t, status.Ready, "failed builds are not recorded")
		})
	}
}

func TestPushModule_Declines(t *testing.T) {
	p, m := setup(t, "")
	res, err := p.PushModule(context.Background(), plugin.PushModuleParams{ModuleName: m.Name, Module: m})
	require.NoError(t, err)
	assert.False(t, res.Pushed)
	assert.Equal(t, "Push not supported for generic module", res.Message)
}

func TestEnvironment(t *testing.T) {
	p, _ := setup(t, "")
	status, err := p.GetEnvironmentStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Configured)
	assert.NoError(t, p.ConfigureEnvironment(context.Background(), plugin.ConfigureParams{}))
	assert.Equal(t, []string{"generic"}, p.ModuleTypes())
}
