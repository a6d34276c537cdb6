package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/arrendix/protecciones/internal/commands"
	migratecmd "github.com/arrendix/protecciones/migration/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.NewRootCmd(migratecmd.EnvDB).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
