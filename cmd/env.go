package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/edvald/garden-1/internal/utils"
	"github.com/spf13/cobra"
)

func newEnvCmd(o *rootOptions) *cobra.Command {
	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Inspect and prepare the providers of an environment",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether each provider of the environment is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(o)
			if err != nil {
				return err
			}
			defer s.Close()

			statuses, err := s.plugins.EnvironmentStatus(cmd.Context())
			if err != nil {
				return err
			}
			if o.jsonLogs {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}

			names := make([]string, 0, len(statuses))
			for name := range statuses {
				names = append(names, name)
			}
			sort.Strings(names)

			table := utils.NewTable("PROVIDER", "CONFIGURED", "DETAIL")
			for _, name := range names {
				status := statuses[name]
				if err := table.AddRow(name, strconv.FormatBool(status.Configured), formatDetail(status.Detail)); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), table.String())
			return nil
		},
	}

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Install and initialize whatever the environment's providers need",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(o)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.plugins.ConfigureEnvironment(cmd.Context()); err != nil {
				return err
			}
			if !o.quiet {
				fmt.Fprintln(cmd.OutOrStdout(), utils.Success("Environment configured"))
			}
			return nil
		},
	}

	envCmd.AddCommand(statusCmd, configureCmd)
	return envCmd
}

// formatDetail renders scalar detail values as sorted key=value pairs.
func formatDetail(detail map[string]interface{}) string {
	keys := make([]string, 0, len(detail))
	for k, v := range detail {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, detail[k]))
	}
	return strings.Join(parts, " ")
}
