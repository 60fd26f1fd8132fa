package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
)

func newQueriesCmd(_ *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "List the canned queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tARGS\tDESCRIPTION")
			for _, q := range neoviz.DefaultCatalog().List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Name, strings.Join(q.Args, ","), q.Description)
			}
			return tw.Flush()
		},
	}
}
