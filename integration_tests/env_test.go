//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edvald/garden-1/integration_tests/internal/gcloud"
	"github.com/edvald/garden-1/integration_tests/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvStatus_Google(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if !gcloud.Installed() {
		t.Skip("gcloud is not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	info, err := gcloud.GetInfo(ctx)
	require.NoError(t, err)

	dir, cleanup := testutil.SetupTestWorkspace(t, keepWorkspaces)
	t.Cleanup(cleanup)
	project := `project:
  name: cloud
  environments:
    - name: google
      providers:
        - name: google-cloud
          default-project: ` + os.Getenv("GCP_PROJECT_ID") + `
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garden.yml"), []byte(project), 0o644))

	res := testutil.RunGarden(t, nil, "env", "status", "--root", dir, "--json")
	require.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, `"google-cloud"`)
	assert.Contains(t, res.Stdout, `"sdkInstalled": true`)
	if info.Config.Account != "" {
		assert.Contains(t, res.Stdout, `"sdkInitialized": true`)
	}
}
