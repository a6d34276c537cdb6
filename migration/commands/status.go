package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func StatusCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, migrator, err := getMigrator(open)
			if err != nil {
				return err
			}

			appliedMap, err := migrator.GetAppliedVersions()
			if err != nil {
				return fmt.Errorf("failed to get applied migrations: %w", err)
			}
			debugf(cmd, "%d applied versions", len(appliedMap))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s  %-34s  %-8s\n", "Version", "Name", "Status")
			for _, mr := range migrator.Migrations() {
				status := "Pending"
				if appliedMap[mr.Version] {
					status = "Applied"
				}
				fmt.Fprintf(out, "%-16s  %-34s  %-8s\n", mr.Version, mr.Name, status)
			}

			return nil
		},
	}

	cmd.Flags().Bool("debug", false, "Enable debug output")

	return cmd
}
