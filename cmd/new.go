package cmd

import (
	"fmt"
	"strings"

	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/scaffold"
	"github.com/edvald/garden-1/internal/utils"
	"github.com/spf13/cobra"
)

func newNewCmd(o *rootOptions) *cobra.Command {
	var (
		moduleDirs  []string
		moduleSpecs []string
		moduleType  string
	)

	newCmd := &cobra.Command{
		Use:     "new [project-name]",
		Aliases: []string{"n"},
		Short:   "Create garden.yml scaffolding for a new project",
		Long: `Create a project garden.yml in the project root and a garden.yml for each module.

The project name defaults to the name of the project root directory. Modules
are taken from the subdirectories of --module-dirs and from --module flags.
All names are validated before anything is written. Existing garden.yml files
are left untouched.

EXAMPLES:
# Scaffold a project named after the current directory
garden new

# Scaffold my-project and add a module config to every directory under services/
garden new my-project --module-dirs=services

# Add explicit modules
garden new my-project --module api=generic --module hello=google-cloud-function
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := o.projectRoot()
			if err != nil {
				return err
			}

			opts := scaffold.Options{
				ProjectRoot: root,
				ModuleDirs:  moduleDirs,
				DefaultType: moduleType,
				Log:         logger.GetLogger().Root(),
			}
			if len(args) == 1 {
				opts.ProjectName = args[0]
			}
			for _, spec := range moduleSpecs {
				m, err := scaffold.ParseModuleFlag(spec)
				if err != nil {
					return err
				}
				opts.Modules = append(opts.Modules, m)
			}

			logger.User.Starting(fmt.Sprintf("Initializing new project in %s", root))
			summary, err := scaffold.New(opts)
			if err != nil {
				return err
			}

			if !o.quiet {
				box := utils.NewBox(utils.SuccessMessage, fmt.Sprintf("Project %s is set up", summary.ProjectName))
				for _, path := range summary.Written {
					box.AddBullet("wrote " + path)
				}
				for _, path := range summary.Skipped {
					box.AddBullet("kept existing " + path)
				}
				fmt.Fprintln(cmd.OutOrStdout(), box.Render())
			}
			return nil
		},
	}

	newCmd.Flags().StringSliceVar(&moduleDirs, "module-dirs", nil, "Comma-separated directories, relative to the project root, whose subdirectories are modules")
	newCmd.Flags().StringArrayVar(&moduleSpecs, "module", nil, "Module to create as name=type (repeatable)")
	newCmd.Flags().StringVar(&moduleType, "type", "generic", fmt.Sprintf("Module type for directories found in --module-dirs (%s)", strings.Join(scaffold.ModuleTypes(), ", ")))
	return newCmd
}
