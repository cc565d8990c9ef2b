package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tempo/internal/app"
)

const projectsHelp = `Projects are project files or sqlite:<project-id> references.
Without arguments tempo.yaml in the current directory is used.`

func addRecalcFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "Recalculate even if the project is unchanged since the last run")
	cmd.Flags().Bool("json", false, "Print the reports as JSON")
	cmd.Flags().IntP("parallel", "j", 0, "Number of projects recalculated at once (default: number of CPUs)")
}

func recalcOptions(cmd *cobra.Command) app.RecalcOptions {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")
	jsonOut, _ := cmd.Flags().GetBool("json")
	parallel, _ := cmd.Flags().GetInt("parallel")
	return app.RecalcOptions{
		DryRun:      dryRun,
		Force:       force,
		JSON:        jsonOut,
		Parallelism: parallel,
	}
}

func (c *CLI) newRecalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recalc [projects...]",
		Aliases: []string{"recalculate"},
		Short:   "Recalculate planned dates and roll up progress",
		Long:    "Recalculate planned dates from dependency links and roll up progress.\n\n" + projectsHelp,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Recalculate(cmd.Context(), args, recalcOptions(cmd))
		},
	}
	cmd.Flags().BoolP("dry-run", "n", false, "Print the updates without writing them")
	addRecalcFlags(cmd)
	return cmd
}
