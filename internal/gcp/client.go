package gcp

import (
	"context"
	"fmt"

	compute "cloud.google.com/go/compute/apiv1"
	"github.com/edvald/garden-1/internal/logger"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// ClientOptions configures the Compute API clients.
type ClientOptions struct {
	// CredentialsFile points to a service account key. Empty uses
	// Application Default Credentials.
	CredentialsFile string
	// Credentials, when set, take precedence over CredentialsFile.
	Credentials *google.Credentials
}

type Clients struct {
	Projects ProjectClientInterface
}

func NewClients(ctx context.Context, opts ClientOptions) (*Clients, error) {
	logger.Op.Debug("Initializing GCP Compute API client...")

	projectsClient, err := compute.NewProjectsRESTClient(ctx, getDefaultClientOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute Projects client: %w", err)
	}
	logger.Op.Debug("Projects client initialized.")

	return &Clients{
		Projects: NewProjectClient(projectsClient),
	}, nil
}

func (c *Clients) Close() {
	logger.Op.Debug("Closing GCP Compute API clients...")
	if c.Projects != nil {
		c.Projects.Close()
	}
	logger.Op.Debug("GCP Compute API clients closed.")
}

func getDefaultClientOptions(opts ClientOptions) []option.ClientOption {
	clientOpts := []option.ClientOption{option.WithUserAgent("garden")}
	switch {
	case opts.Credentials != nil:
		clientOpts = append(clientOpts, option.WithCredentials(opts.Credentials))
	case opts.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	return clientOpts
}
