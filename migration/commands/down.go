package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func DownCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, migrator, err := getMigrator(open)
			if err != nil {
				return err
			}

			reverted, err := migrator.Down()
			if err != nil {
				return err
			}
			if reverted == nil {
				return fmt.Errorf("no migrations to revert")
			}

			debugf(cmd, "reverted version %s", reverted.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully reverted migration: %s\n", reverted.Name)
			return nil
		},
	}

	cmd.Flags().Bool("debug", false, "Enable debug output")

	return cmd
}
