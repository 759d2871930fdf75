package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/edvald/garden-1/internal/config"
	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/scheduler"
	"github.com/edvald/garden-1/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "v0.1.0"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	root     string
	env      string
	verbose  bool
	jsonLogs bool
	quiet    bool

	v *viper.Viper
}

// NewRootCmd builds the garden command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "garden",
		Short: "Build and publish the modules of a project",
		Long: `Garden builds and publishes the modules of a project into pluggable
target environments. Builds are keyed by module version, so modules whose
sources and build dependencies did not change are skipped.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(o.verbose, o.jsonLogs, o.quiet)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.root, "root", ".", "Project root directory")
	pf.StringVarP(&o.env, "env", "e", "", "Environment to use (defaults to the first one in garden.yml)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&o.jsonLogs, "json", false, "Output logs and results in JSON format")
	pf.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress non-error output")
	pf.Int("max-parallel", config.DefaultSettings().MaxParallel, "Maximum number of tasks processed in parallel")
	pf.Duration("task-timeout", 0, "Maximum duration of a single task (0 means no limit)")

	for _, key := range []string{"max-parallel", "task-timeout"} {
		if err := o.v.BindPFlag(key, pf.Lookup(key)); err != nil {
			panic(fmt.Sprintf("Failed to bind flag %s: %v", key, err))
		}
	}

	rootCmd.AddCommand(
		newBuildCmd(o),
		newPushCmd(o),
		newNewCmd(o),
		newEnvCmd(o),
	)
	return rootCmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	var gerr *gerrors.GardenError
	switch {
	case errors.Is(err, scheduler.ErrTasksFailed):
		// The run summary already lists the failures.
	case errors.As(err, &gerr):
		fmt.Fprintln(w, gerrors.FormatForCLI(err))
	default:
		fmt.Fprintln(w, utils.Error("Command failed", err.Error()))
	}
}
