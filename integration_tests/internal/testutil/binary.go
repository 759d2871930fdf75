package testutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// GetGardenBinaryPath returns the path to the garden binary for integration tests.
// It checks the current directory, the parent directory and ../bin in that order.
func GetGardenBinaryPath() string {
	candidates := []string{
		"garden",
		filepath.Join("..", "garden"),
		filepath.Join("..", "bin", "garden"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, err := filepath.Abs(c)
			if err != nil {
				return c
			}
			return abs
		}
	}
	return "./garden"
}

// Result is the outcome of one garden invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunGarden runs the garden binary with args and extra environment variables.
func RunGarden(t *testing.T, env []string, args ...string) Result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, GetGardenBinaryPath(), args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run garden %v: %v", args, err)
	}

	t.Logf("garden %v exited %d\nstdout:\n%s\nstderr:\n%s", args, res.ExitCode, res.Stdout, res.Stderr)
	return res
}
