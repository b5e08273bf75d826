package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/domain/config"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/sqlite"
)

// newImportCmd creates the import command.
func (a *App) newImportCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "import <records.json>",
		Short: "Import records into a SQLite calendar",
		Long: `Import a JSON array of calendar records into the SQLite calendar table.
Records whose ID already exists are skipped.

Examples:
  drawcal import fixtures/calendar.json
  drawcal import --dsn "file:/var/lib/drawcal/drawcal.db" records.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.importRecords(cmd.Context(), args[0], dsn)
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite DSN (overrides config)")

	return cmd
}

func (a *App) importRecords(ctx context.Context, path, dsn string) error {
	if dsn == "" {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Driver != config.DriverSQLite {
			return fmt.Errorf("import needs the sqlite driver, config uses %q (pass --dsn)", cfg.Storage.Driver)
		}
		dsn = cfg.Storage.SQLite.DSN
	}

	source, err := memory.LoadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	records, err := source.FetchAll(ctx)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(sqlite.DefaultConfig(), sqlite.WithDSN(dsn))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	inserted, err := store.Insert(ctx, records...)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "Imported %d of %d records (%d already present)\n",
		inserted, len(records), len(records)-inserted)
	return nil
}
