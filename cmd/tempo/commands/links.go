package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/tempo/internal/core/domain"
)

func (c *CLI) newLinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "links <predecessors>",
		Short:   "Show how a predecessor field is parsed",
		Example: `  tempo links "3FS+2; 7SS-1; after review"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, link := range c.app.ParseLinks(strings.Join(args, " ")) {
				if link.Kind == domain.LinkLiteral {
					_, _ = fmt.Fprintf(out, "%-10s %q\n", link.Kind, link.Ref)
					continue
				}
				_, _ = fmt.Fprintf(out, "%-10s %s\n", link.Kind, link)
			}
			return nil
		},
	}
}
