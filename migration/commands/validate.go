package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/schema"
)

func ValidateCmd(open DBOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every model has its table and columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := getMigrator(open)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(models.ModelTypeRegistry))
			for name := range models.ModelTypeRegistry {
				names = append(names, name)
			}
			sort.Strings(names)

			var problems []string
			for _, name := range names {
				drift, err := schema.Check(db, models.ModelTypeRegistry[name])
				if err != nil {
					return err
				}
				debugf(cmd, "%s -> %s", name, drift.Table)
				switch {
				case drift.MissingTable:
					problems = append(problems, fmt.Sprintf("%s: missing table %s", name, drift.Table))
				case len(drift.MissingColumns) > 0:
					problems = append(problems, fmt.Sprintf("%s: missing columns %s", name, strings.Join(drift.MissingColumns, ", ")))
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("validation failed:\n  %s", strings.Join(problems, "\n  "))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "All model tables are present")
			return nil
		},
	}
}
