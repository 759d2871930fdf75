package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/edvald/garden-1/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testProject creates a project with an api module that allows push and a
// worker module that builds after api.
func testProject(t *testing.T, apiCommand string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "garden.yml"), `project:
  name: shop
  environments:
    - name: local
      providers:
        - name: generic
`)
	writeFile(t, filepath.Join(root, "api", "garden.yml"), `module:
  name: api
  type: generic
  allow-push: true
  build:
    command: "`+apiCommand+`"
`)
	writeFile(t, filepath.Join(root, "api", "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "worker", "garden.yml"), `module:
  name: worker
  type: generic
  build:
    dependencies: [api]
`)
	return root
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildCmd(t *testing.T) {
	root := testProject(t, "echo building api")

	out, err := executeCommand(t, "build", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "build.api")
	assert.Contains(t, out, "build.worker")
	assert.Contains(t, out, "2 tasks completed")
	assert.FileExists(t, filepath.Join(root, ".garden", "build", "api", ".garden-version"))
	assert.FileExists(t, filepath.Join(root, ".garden", "build", "worker", ".garden-version"))

	out, err = executeCommand(t, "build", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped (up-to-date)")
}

func TestBuildCmd_SkipsWhenBuildWritesOutputs(t *testing.T) {
	tests := []struct {
		name    string
		declare func(t *testing.T, root string)
	}{
		{
			name: "ignore file",
			declare: func(t *testing.T, root string) {
				writeFile(t, filepath.Join(root, "api", ".gardenignore"), "app.bin\n")
			},
		},
		{
			name: "build outputs",
			declare: func(t *testing.T, root string) {
				writeFile(t, filepath.Join(root, "api", "garden.yml"), `module:
  name: api
  type: generic
  build:
    command: "echo artifact > app.bin"
    outputs: [app.bin]
`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testProject(t, "echo artifact > app.bin")
			tt.declare(t, root)

			out, err := executeCommand(t, "build", "api", "--root", root)
			require.NoError(t, err)
			assert.NotContains(t, out, "up-to-date")
			assert.FileExists(t, filepath.Join(root, "api", "app.bin"))

			out, err = executeCommand(t, "build", "api", "--root", root)
			require.NoError(t, err)
			assert.Contains(t, out, "skipped (up-to-date)")
		})
	}
}

func TestBuildCmd_Force(t *testing.T) {
	root := testProject(t, "echo building api")

	_, err := executeCommand(t, "build", "--root", root)
	require.NoError(t, err)

	out, err := executeCommand(t, "build", "api", "--root", root, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "build.api")
	assert.NotContains(t, out, "build.worker")
	assert.NotContains(t, out, "up-to-date")
}

func TestBuildCmd_Plan(t *testing.T) {
	root := testProject(t, "echo building api")
	dot := filepath.Join(t.TempDir(), "graph.dot")

	out, err := executeCommand(t, "build", "--root", root, "--plan", "--dot", dot)
	require.NoError(t, err)
	assert.Contains(t, out, "2 tasks:")
	assert.Contains(t, out, "build.worker")
	assert.Contains(t, out, "after build.api")
	assert.FileExists(t, dot)
	assert.NoDirExists(t, filepath.Join(root, ".garden", "build"))
}

func TestBuildCmd_Failure(t *testing.T) {
	root := testProject(t, "exit 1")

	out, err := executeCommand(t, "build", "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduler.ErrTasksFailed)
	assert.Contains(t, out, "1 of 2 tasks failed")
	assert.Contains(t, out, "build.worker: skipped")
	assert.NoFileExists(t, filepath.Join(root, ".garden", "build", "worker", ".garden-version"))
}

func TestBuildCmd_UnknownModule(t *testing.T) {
	root := testProject(t, "echo building api")

	_, err := executeCommand(t, "build", "nope", "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrParameter)
	assert.Contains(t, err.Error(), "Could not find module 'nope'")
}

func TestBuildCmd_NoProject(t *testing.T) {
	_, err := executeCommand(t, "build", "--root", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrConfiguration)
}

func TestBuildCmd_UnknownEnvironment(t *testing.T) {
	root := testProject(t, "echo building api")

	_, err := executeCommand(t, "build", "--root", root, "--env", "prod")
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrParameter)
}

func TestPushCmd(t *testing.T) {
	root := testProject(t, "echo building api")

	out, err := executeCommand(t, "push", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "push.api")
	assert.Contains(t, out, "build.api")
	assert.Contains(t, out, "push.worker")
	assert.Contains(t, out, "Push not supported for generic module")
	assert.NotContains(t, out, "build.worker")
}

func TestPushCmd_JSON(t *testing.T) {
	root := testProject(t, "echo building api")

	out, err := executeCommand(t, "push", "api", "--root", root, "--plan", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "push.api"`)
	assert.Contains(t, out, `"from": "push.api"`)
	assert.Contains(t, out, `"to": "build.api"`)
}

func TestNewCmd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "services", "api"), 0o755))

	out, err := executeCommand(t, "new", "my-project", "--root", root,
		"--module-dirs", "services", "--module", "hello=google-cloud-function")
	require.NoError(t, err)
	assert.Contains(t, out, "Project my-project is set up")
	assert.FileExists(t, filepath.Join(root, "garden.yml"))
	assert.FileExists(t, filepath.Join(root, "services", "api", "garden.yml"))
	assert.FileExists(t, filepath.Join(root, "hello", "garden.yml"))

	out, err = executeCommand(t, "build", "--root", root, "--plan")
	require.NoError(t, err)
	assert.Contains(t, out, "build.api")
}

func TestNewCmd_InvalidName(t *testing.T) {
	root := t.TempDir()

	_, err := executeCommand(t, "new", "Not_Valid", "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrValidation)
	assert.NoFileExists(t, filepath.Join(root, "garden.yml"))

	_, err = executeCommand(t, "new", "ok", "--root", root, "--module", "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrParameter)
	assert.NoFileExists(t, filepath.Join(root, "garden.yml"))
}

func TestEnvStatusCmd(t *testing.T) {
	root := testProject(t, "echo building api")

	out, err := executeCommand(t, "env", "status", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "generic")
	assert.Contains(t, out, "true")

	out, err = executeCommand(t, "env", "status", "--root", root, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"configured": true`)

	_, err = executeCommand(t, "env", "configure", "--root", root)
	require.NoError(t, err)
}

func TestMaxParallelValidation(t *testing.T) {
	root := testProject(t, "echo building api")

	_, err := executeCommand(t, "build", "--root", root, "--max-parallel", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrValidation)
}

func TestFormatDetail(t *testing.T) {
	detail := map[string]interface{}{
		"sdkInstalled": true,
		"sdkInfo":      map[string]interface{}{"a": 1},
		"account":      "dev",
	}
	assert.Equal(t, "account=dev sdkInstalled=true", formatDetail(detail))
}
