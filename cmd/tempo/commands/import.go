package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <project-file>",
		Short: "Copy a project file into the SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _ := cmd.Flags().GetString("db")
			return c.app.Import(cmd.Context(), args[0], db)
		},
	}
	cmd.Flags().String("db", "", "Database file (default: the configured database)")
	return cmd
}
