package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/edvald/garden-1/internal/config"
	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/module"
	"github.com/edvald/garden-1/internal/plugin"
	"github.com/edvald/garden-1/internal/plugins/generic"
	"github.com/edvald/garden-1/internal/plugins/google"
	"github.com/edvald/garden-1/internal/progress"
	"github.com/edvald/garden-1/internal/scheduler"
	"github.com/edvald/garden-1/internal/store"
	"github.com/edvald/garden-1/internal/task"
	"github.com/edvald/garden-1/internal/utils"
	"github.com/spf13/cobra"
)

func (o *rootOptions) projectRoot() (string, error) {
	root, err := filepath.Abs(o.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root %s: %w", o.root, err)
	}
	return root, nil
}

// session is everything a command needs to run tasks against a project.
type session struct {
	opts     *rootOptions
	settings *config.Settings
	project  *config.Project
	registry *module.Registry
	store    store.VersionStore
	plugins  *plugin.Context
}

func openSession(o *rootOptions) (*session, error) {
	root, err := o.projectRoot()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(o.v, root)
	if err != nil {
		return nil, err
	}
	project, err := config.LoadProject(root)
	if err != nil {
		return nil, err
	}
	registry, err := module.NewRegistryFromProject(project)
	if err != nil {
		return nil, err
	}
	env, err := selectEnvironment(project, o.env)
	if err != nil {
		return nil, err
	}

	versions, err := openStore(settings, root)
	if err != nil {
		return nil, err
	}
	providers, err := newProviders(env, settings, versions)
	if err != nil {
		versions.Close()
		return nil, err
	}
	pctx, err := plugin.NewContext(root, nil, registry, providers...)
	if err != nil {
		versions.Close()
		return nil, err
	}

	logger.Op.WithFields(map[string]interface{}{
		"root":        root,
		"environment": env.Name,
		"modules":     len(registry.Modules()),
	}).Debug("Project loaded")

	return &session{
		opts:     o,
		settings: settings,
		project:  project,
		registry: registry,
		store:    versions,
		plugins:  pctx,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		logger.Op.Warnf("Failed to close version store: %v", err)
	}
}

// selectModules returns the named modules, or every module when names is empty.
func (s *session) selectModules(names []string) ([]*module.Module, error) {
	if len(names) == 0 {
		return s.registry.Modules(), nil
	}
	return s.registry.Select(names)
}

func selectEnvironment(p *config.Project, name string) (config.EnvironmentConfig, error) {
	if name == "" {
		env, _ := p.DefaultEnvironment()
		return env, nil
	}
	for _, env := range p.Config.Environments {
		if env.Name == name {
			return env, nil
		}
	}
	return config.EnvironmentConfig{}, gerrors.NewParameterError(gerrors.CodeInvalidParameter,
		fmt.Sprintf("Environment %s is not configured in project %s", name, p.Config.Name),
		"Select environment")
}

func openStore(settings *config.Settings, root string) (store.VersionStore, error) {
	if settings.Cache.RedisURL == "" {
		return store.NewFileStore(root), nil
	}
	rs, err := store.NewRedisStore(settings.Cache.RedisURL, "")
	if err != nil {
		return nil, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
			"Could not open the Redis build cache", "Open version store").
			WithOriginalError(err).
			WithTroubleshooting("Check cache.redis-url in garden-cli.yml or GARDEN_CACHE_REDIS_URL")
	}
	return rs, nil
}

// newProviders returns the generic provider plus every provider the
// environment lists.
func newProviders(env config.EnvironmentConfig, settings *config.Settings, versions store.VersionStore) ([]plugin.Provider, error) {
	providers := []plugin.Provider{generic.New(versions)}
	for _, pc := range env.Providers {
		switch pc.Name {
		case generic.ProviderName:
		case google.ProviderName:
			providers = append(providers, google.New(google.Config{
				DefaultProject:  pc.DefaultProject,
				CredentialsFile: settings.Google.CredentialsFile,
			}))
		default:
			return nil, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
				fmt.Sprintf("Unknown provider %s in environment %s", pc.Name, env.Name),
				"Register providers").
				WithTroubleshooting(fmt.Sprintf("Available providers: %s, %s", generic.ProviderName, google.ProviderName))
		}
	}
	return providers, nil
}

type runOptions struct {
	plan    bool
	dotFile string
}

// run resolves tasks into a graph and processes it, printing a summary.
func (s *session) run(ctx context.Context, cmd *cobra.Command, tasks []task.Task, opts runOptions) error {
	graph := scheduler.NewTaskGraph()
	for _, t := range tasks {
		if err := graph.AddTask(ctx, t); err != nil {
			return gerrors.NewTaskFailedError(t.Key(), err)
		}
	}

	if opts.dotFile != "" {
		if err := scheduler.NewGraphVisualization(graph, nil).ExportToDOT(opts.dotFile); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.dotFile, err)
		}
		logger.User.Infof("Task graph written to %s", opts.dotFile)
	}
	if opts.plan {
		return printPlan(cmd.OutOrStdout(), graph, s.opts.jsonLogs)
	}

	run, err := graph.Process(ctx, &scheduler.ExecutorConfig{
		MaxParallelTasks: s.settings.MaxParallel,
		TaskTimeout:      s.settings.TaskTimeout,
		ProgressInterval: 5 * time.Second,
	})
	if run != nil && !s.opts.quiet {
		if perr := printRun(cmd.OutOrStdout(), graph, run, s.opts.jsonLogs); perr != nil {
			return perr
		}
	}
	return err
}

func printPlan(w io.Writer, graph *scheduler.TaskGraph, asJSON bool) error {
	vis := scheduler.NewGraphVisualization(graph, nil)
	if asJSON {
		data, err := vis.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	summary, err := vis.GenerateTextSummary()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, summary)
	return err
}

func printRun(w io.Writer, graph *scheduler.TaskGraph, run *scheduler.RunResult, asJSON bool) error {
	if asJSON {
		data, err := scheduler.NewGraphVisualization(graph, run).JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	table := utils.NewTable("TASK", "VERSION", "STATUS", "DURATION", "MESSAGE")
	for _, res := range run.Sorted() {
		status := res.Status.String()
		if res.SkipReason != "" {
			status = fmt.Sprintf("%s (%s)", status, res.SkipReason)
		}
		if err := table.AddRow(res.Key, res.Version, status, progress.FormatDuration(res.Duration()), res.Message); err != nil {
			return err
		}
	}
	fmt.Fprint(w, table.String())

	if run.Success {
		fmt.Fprintln(w, utils.Success(fmt.Sprintf("%d tasks completed in %s", len(run.Results), progress.FormatDuration(run.Duration))))
		return nil
	}

	failed := run.Failed()
	box := utils.NewBox(utils.ErrorMessage, fmt.Sprintf("%d of %d tasks failed", len(failed), len(run.Results)))
	for _, res := range failed {
		box.AddBullet(fmt.Sprintf("%s: %s", res.Key, res.Message))
	}
	for _, res := range run.Skipped() {
		box.AddBullet(fmt.Sprintf("%s: skipped, %s", res.Key, res.Message))
	}
	fmt.Fprintln(w, box.Render())
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
