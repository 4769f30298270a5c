package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"invoice-generator/internal/config"
	"invoice-generator/internal/database"

	"github.com/google/subcommands"
)

type migrateCmd struct {
	configPath *string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the database schema and exit" }
func (*migrateCmd) Usage() string {
	return `migrate

  Runs the schema migration against the configured database.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (m *migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*m.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	db, err := openDB(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := database.Close(db); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "migrated %s database\n", cfg.Database.Driver)
	return subcommands.ExitSuccess
}
