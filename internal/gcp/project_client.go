package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	computepb "cloud.google.com/go/compute/apiv1/computepb"
	"github.com/edvald/garden-1/internal/logger"
	"github.com/googleapis/gax-go/v2"
	"github.com/googleapis/gax-go/v2/apierror"
)

// ProjectsAPI is the subset of *compute.ProjectsClient used here.
type ProjectsAPI interface {
	Get(ctx context.Context, req *computepb.GetProjectRequest, opts ...gax.CallOption) (*computepb.Project, error)
	Close() error
}

// ProjectClientInterface defines the project operations the google provider needs
type ProjectClientInterface interface {
	// GetProject fetches project metadata; it fails when the project does not
	// exist or the caller cannot read it.
	GetProject(ctx context.Context, projectID string) (*ProjectInfo, error)
	Close() error
}

// ProjectInfo is the part of a Compute project the CLI reports.
type ProjectInfo struct {
	ID                    string
	Name                  string
	DefaultServiceAccount string
}

// ErrProjectNotAccessible is returned when the API answers 403 or 404.
var ErrProjectNotAccessible = errors.New("project not found or not accessible")

// ProjectClient wraps the GCP projects client
type ProjectClient struct {
	client ProjectsAPI
	retry  []gax.CallOption
}

func NewProjectClient(client ProjectsAPI) *ProjectClient {
	return &ProjectClient{
		client: client,
		retry: []gax.CallOption{
			gax.WithRetry(func() gax.Retryer {
				return gax.OnHTTPCodes(gax.Backoff{
					Initial:    500 * time.Millisecond,
					Max:        5 * time.Second,
					Multiplier: 2,
				}, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout)
			}),
		},
	}
}

func (pc *ProjectClient) GetProject(ctx context.Context, projectID string) (*ProjectInfo, error) {
	logFields := map[string]interface{}{
		"project": projectID,
	}
	logger.Op.WithFields(logFields).Debug("Fetching project")

	project, err := pc.client.Get(ctx, &computepb.GetProjectRequest{Project: projectID}, pc.retry...)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.HTTPCode() {
			case http.StatusForbidden, http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s: %v", ErrProjectNotAccessible, projectID, err)
			}
		}
		logger.Op.WithFields(logFields).WithError(err).Error("Failed to fetch project")
		return nil, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}

	return &ProjectInfo{
		ID:                    projectID,
		Name:                  project.GetName(),
		DefaultServiceAccount: project.GetDefaultServiceAccount(),
	}, nil
}

func (pc *ProjectClient) Close() error {
	return pc.client.Close()
}
