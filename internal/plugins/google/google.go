// Package google implements the provider for Google Cloud Functions modules.
// It bootstraps the gcloud SDK and checks that the configured project is
// reachable through the Compute API.
package google

import (
	"context"
	"encoding/json"
	"fmt"

	compute "cloud.google.com/go/compute/apiv1"
	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/edvald/garden-1/internal/gcp"
	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/plugin"
	goauth "golang.org/x/oauth2/google"
)

const (
	ProviderName = "google-cloud"
	ModuleType   = "google-cloud-function"

	sdkDownloadURL = "https://cloud.google.com/sdk/downloads"
	logSection     = "google-cloud-functions"
	pushDeclined   = "functions are deployed from source"
)

// Config is the provider section of a project environment.
type Config struct {
	DefaultProject  string
	CredentialsFile string
}

// ProjectsFactory opens a project client. It returns nil without error when
// no credentials are available.
type ProjectsFactory func(ctx context.Context, credentialsFile string) (gcp.ProjectClientInterface, error)

// Provider handles google-cloud-function modules.
type Provider struct {
	config      Config
	runner      CommandRunner
	newProjects ProjectsFactory
}

var _ plugin.Provider = (*Provider)(nil)

// New creates a google provider using the gcloud binary on PATH and
// Application Default Credentials for API checks.
func New(cfg Config) *Provider {
	return &Provider{config: cfg, runner: ExecRunner{}, newProjects: defaultProjects}
}

// NewWithRunner creates a provider with explicit command and API backends.
func NewWithRunner(cfg Config, runner CommandRunner, projects ProjectsFactory) *Provider {
	return &Provider{config: cfg, runner: runner, newProjects: projects}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) ModuleTypes() []string {
	return []string{ModuleType}
}

// sdkInfo is the subset of `gcloud info --format=json` that is inspected.
type sdkInfo struct {
	Config struct {
		Account string `json:"account"`
		Project string `json:"project"`
	} `json:"config"`
	Installation struct {
		Components map[string]interface{} `json:"components"`
	} `json:"installation"`
}

func (p *Provider) GetEnvironmentStatus(ctx context.Context) (plugin.EnvironmentStatus, error) {
	status := plugin.EnvironmentStatus{
		Configured: true,
		Detail: map[string]interface{}{
			"sdkInstalled":            true,
			"sdkInitialized":          true,
			"betaComponentsInstalled": true,
			"sdkInfo":                 map[string]interface{}{},
		},
	}

	out, err := p.runner.Output(ctx, "gcloud", "info", "--format=json")
	if err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"provider": ProviderName,
		}).WithError(err).Debug("gcloud info failed")
		status.Configured = false
		status.Detail["sdkInstalled"] = false
		status.Detail["sdkInitialized"] = false
		status.Detail["betaComponentsInstalled"] = false
		return status, nil
	}

	var raw map[string]interface{}
	var info sdkInfo
	if err := json.Unmarshal(out, &raw); err != nil {
		return status, fmt.Errorf("failed to parse gcloud info output: %w", err)
	}
	if err := json.Unmarshal(out, &info); err != nil {
		return status, fmt.Errorf("failed to parse gcloud info output: %w", err)
	}
	status.Detail["sdkInfo"] = raw

	if info.Config.Account == "" {
		status.Configured = false
		status.Detail["sdkInitialized"] = false
	}
	if _, ok := info.Installation.Components["beta"]; !ok {
		status.Configured = false
		status.Detail["betaComponentsInstalled"] = false
	}

	project := p.config.DefaultProject
	if project == "" {
		project = info.Config.Project
	}
	if project != "" {
		if accessible, ok := p.checkProject(ctx, project); ok {
			status.Detail["projectAccessible"] = accessible
		}
	}

	return status, nil
}

// checkProject reports whether project can be read. ok is false when the
// check could not run.
func (p *Provider) checkProject(ctx context.Context, project string) (accessible, ok bool) {
	if p.newProjects == nil {
		return false, false
	}
	client, err := p.newProjects(ctx, p.config.CredentialsFile)
	if err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"project": project,
		}).WithError(err).Warn("Could not create Compute API client")
		return false, false
	}
	if client == nil {
		logger.Op.Debug("No Google credentials found, skipping project check")
		return false, false
	}
	defer client.Close()

	if _, err := client.GetProject(ctx, project); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"project": project,
		}).WithError(err).Warn("Project is not accessible")
		return false, true
	}
	return true, true
}

func (p *Provider) ConfigureEnvironment(ctx context.Context, params plugin.ConfigureParams) error {
	detail := params.Status.Detail
	log := params.LogEntry
	if log == nil {
		log = logger.GetLogger().Root()
	}

	if !flag(detail, "sdkInstalled") {
		return gerrors.NewSDKNotInstalledError("Google Cloud SDK", sdkDownloadURL)
	}

	if !flag(detail, "betaComponentsInstalled") {
		entry := log.Info(logSection, "Installing gcloud SDK beta components...")
		if err := p.runner.Run(ctx, "gcloud", "components", "update"); err != nil {
			entry.SetError(err.Error())
			return err
		}
		if err := p.runner.Run(ctx, "gcloud", "components", "install", "beta"); err != nil {
			entry.SetError(err.Error())
			return err
		}
		entry.SetSuccess("Done")
	}

	if !flag(detail, "sdkInitialized") {
		entry := log.Info(logSection, "Initializing SDK...")
		if err := p.runner.Interactive(ctx, "gcloud", "init"); err != nil {
			entry.SetError(err.Error())
			return err
		}
		entry.SetSuccess("Done")
	}

	return nil
}

// GetModuleBuildStatus always reports ready; functions are built remotely.
func (p *Provider) GetModuleBuildStatus(ctx context.Context, params plugin.BuildStatusParams) (plugin.BuildStatus, error) {
	return plugin.BuildStatus{Ready: true}, nil
}

func (p *Provider) BuildModule(ctx context.Context, params plugin.BuildModuleParams) (plugin.BuildResult, error) {
	return plugin.BuildResult{Fresh: false, Version: params.Version.VersionString}, nil
}

func (p *Provider) PushModule(ctx context.Context, params plugin.PushModuleParams) (plugin.PushResult, error) {
	return plugin.PushResult{Pushed: false, Message: pushDeclined}, nil
}

func flag(detail map[string]interface{}, key string) bool {
	v, _ := detail[key].(bool)
	return v
}

func defaultProjects(ctx context.Context, credentialsFile string) (gcp.ProjectClientInterface, error) {
	opts := gcp.ClientOptions{CredentialsFile: credentialsFile}
	if credentialsFile == "" {
		creds, err := goauth.FindDefaultCredentials(ctx, compute.DefaultAuthScopes()...)
		if err != nil {
			return nil, nil
		}
		opts.Credentials = creds
	}

	clients, err := gcp.NewClients(ctx, opts)
	if err != nil {
		return nil, err
	}
	return clients.Projects, nil
}
