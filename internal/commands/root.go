package commands

import (
	"github.com/spf13/cobra"

	migratecmd "github.com/arrendix/protecciones/migration/commands"
)

// NewRootCmd assembles the protecciones command tree.
func NewRootCmd(open migratecmd.DBOpener) *cobra.Command {
	root := &cobra.Command{
		Use:          "protecciones",
		Short:        "Lease-guarantee policy workflow service",
		SilenceUsage: true,
	}
	root.AddCommand(
		ServeCmd(),
		migratecmd.MigrateCmd(open),
		PolicyCmd(open),
		StatusesCmd(),
		TokenCmd(),
	)
	return root
}
