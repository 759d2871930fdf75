package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestWorkspace creates an empty project directory under
// tmp_integration_tests/ and returns it with a cleanup function. The
// directory is kept when keep is true or PRESERVE_TEST_WORKSPACE=true.
func SetupTestWorkspace(t *testing.T, keep bool) (string, func()) {
	t.Helper()

	base, err := filepath.Abs(filepath.Join("..", "tmp_integration_tests"))
	require.NoError(t, err, "failed to resolve workspace base directory")

	randomBytes := make([]byte, 4)
	_, err = rand.Read(randomBytes)
	require.NoError(t, err, "failed to generate random bytes")

	testName := strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))
	testName = strings.ReplaceAll(testName, "_", "-")
	dir := filepath.Join(base, fmt.Sprintf("%s-%s", testName, hex.EncodeToString(randomBytes)))
	require.NoError(t, os.MkdirAll(dir, 0o755), "failed to create test workspace directory")

	cleanup := func() {
		if keep || os.Getenv("PRESERVE_TEST_WORKSPACE") == "true" {
			t.Logf("Test workspace preserved in: %s", dir)
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Warning: failed to clean up workspace directory %s: %v", dir, err)
		}
	}
	return dir, cleanup
}

// WriteModule writes a module garden.yml and a source file into dir/name.
func WriteModule(t *testing.T, dir, name, config string) {
	t.Helper()
	moduleDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(moduleDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "garden.yml"), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "main.go"), []byte("package main\n"), 0o644))
}
