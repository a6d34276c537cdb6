package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/database"
	"github.com/arrendix/protecciones/migration"
)

// DBOpener returns the database the commands operate on.
type DBOpener func() (*gorm.DB, error)

// EnvDB opens the database described by DATABASE_URL and DB_DRIVER.
func EnvDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg.Database)
}

// MigrateCmd groups the schema commands under one parent.
func MigrateCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	cmd.AddCommand(
		UpCmd(open),
		DownCmd(open),
		StatusCmd(open),
		HistoryCmd(open),
		ValidateCmd(open),
	)
	return cmd
}

func getMigrator(open DBOpener) (*gorm.DB, *migration.Migrator, error) {
	db, err := open()
	if err != nil {
		return nil, nil, err
	}
	return db, migration.NewMigrator(db, migration.Schema()...), nil
}

func debugf(cmd *cobra.Command, format string, args ...interface{}) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		fmt.Fprintf(cmd.ErrOrStderr(), "[debug] "+format+"\n", args...)
	}
}
