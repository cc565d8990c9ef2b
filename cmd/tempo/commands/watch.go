package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [projects...]",
		Short: "Recalculate project files whenever they change",
		Long:  "Recalculate project files once and again whenever they change.\n\n" + projectsHelp,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args, recalcOptions(cmd))
		},
	}
	addRecalcFlags(cmd)
	return cmd
}
