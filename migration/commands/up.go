package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func UpCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			out := cmd.OutOrStdout()

			_, migrator, err := getMigrator(open)
			if err != nil {
				return err
			}

			pending, err := migrator.Pending()
			if err != nil {
				return fmt.Errorf("failed to get applied migrations: %w", err)
			}
			debugf(cmd, "%d registered, %d pending", len(migrator.Migrations()), len(pending))

			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending migrations.")
				return nil
			}

			if dryRun {
				fmt.Fprintln(out, "Pending migrations:")
				for _, mr := range pending {
					fmt.Fprintf(out, "- %s (%s)\n", mr.Name, mr.Version)
				}
				return nil
			}

			applied, err := migrator.Up()
			for _, mr := range applied {
				fmt.Fprintf(out, "Successfully applied migration: %s\n", mr.Name)
			}
			return err
		},
	}

	cmd.Flags().Bool("dry-run", false, "Show pending migrations without executing them")
	cmd.Flags().Bool("debug", false, "Enable debug output")

	return cmd
}
