package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arrendix/protecciones/internal/policy"
)

func StatusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List the policy lifecycle statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tLABEL\tCOLOR\tFILTERABLE\tTERMINAL")
			for _, s := range policy.Describe() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\n", s.Value, s.Label, s.Color, s.Filterable, s.Terminal)
			}
			return w.Flush()
		},
	}
}
