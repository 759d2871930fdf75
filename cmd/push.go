package cmd

import (
	"github.com/edvald/garden-1/internal/task"
	"github.com/spf13/cobra"
)

func newPushCmd(o *rootOptions) *cobra.Command {
	var (
		forceBuild bool
		plan       bool
		dotFile    string
	)

	pushCmd := &cobra.Command{
		Use:   "push [modules...]",
		Short: "Build and publish modules",
		Long: `Publish the given modules, or every module in the project when none are named.

Only modules with allow-push: true in their garden.yml are published; each is
built first. Other modules are reported as having push disabled. A provider
that declines to publish a module is reported as a warning, not a failure.

EXAMPLES:
# Push everything that allows it
garden push

# Rebuild before pushing
garden push api --force-build
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(o)
			if err != nil {
				return err
			}
			defer s.Close()

			modules, err := s.selectModules(args)
			if err != nil {
				return err
			}

			tasks := make([]task.Task, 0, len(modules))
			for _, m := range modules {
				t, err := task.NewPushTask(ctx, task.PushParams{Context: s.plugins, Module: m, ForceBuild: forceBuild})
				if err != nil {
					return err
				}
				tasks = append(tasks, t)
			}
			return s.run(ctx, cmd, tasks, runOptions{plan: plan, dotFile: dotFile})
		},
	}

	pushCmd.Flags().BoolVar(&forceBuild, "force-build", false, "Rebuild modules before pushing even when already built")
	pushCmd.Flags().BoolVar(&plan, "plan", false, "Print the task graph and exit without pushing")
	pushCmd.Flags().StringVar(&dotFile, "dot", "", "Write the task graph in DOT format to this file")
	return pushCmd
}
