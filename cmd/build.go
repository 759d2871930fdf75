package cmd

import (
	"github.com/edvald/garden-1/internal/task"
	"github.com/spf13/cobra"
)

func newBuildCmd(o *rootOptions) *cobra.Command {
	var (
		force   bool
		plan    bool
		dotFile string
	)

	buildCmd := &cobra.Command{
		Use:   "build [modules...]",
		Short: "Build modules and their build dependencies",
		Long: `Build the given modules, or every module in the project when none are named.

Build dependencies declared in a module's garden.yml are built first. A module
whose version is already built is skipped unless --force is set.

EXAMPLES:
# Build everything
garden build

# Rebuild one module and whatever it depends on
garden build api --force

# Show the task graph without building
garden build --plan --dot graph.dot
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
				t, err := task.NewBuildTask(ctx, task.BuildParams{Context: s.plugins, Module: m, Force: force})
				if err != nil {
					return err
				}
				tasks = append(tasks, t)
			}
			return s.run(ctx, cmd, tasks, runOptions{plan: plan, dotFile: dotFile})
		},
	}

	buildCmd.Flags().BoolVarP(&force, "force", "f", false, "Build even when the module version is already built")
	buildCmd.Flags().BoolVar(&plan, "plan", false, "Print the task graph and exit without building")
	buildCmd.Flags().StringVar(&dotFile, "dot", "", "Write the task graph in DOT format to this file")
	return buildCmd
}
