package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atlas-conseil/tenderflow/internal/cli"
	"github.com/atlas-conseil/tenderflow/internal/config"
	"github.com/atlas-conseil/tenderflow/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Bring the database schema up to the version this build expects.
Migrations are idempotent; running them twice is safe.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "show the schema version without migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	statusOnly, _ := cmd.Flags().GetBool("status")

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if statusOnly {
		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		fmt.Printf("Schema version: %d (expected %d)\n", version, storage.ExpectedSchemaVersion)
		if version < storage.ExpectedSchemaVersion {
			fmt.Println(cli.FormatWarning("Database is behind, run `tenderflow migrate`"))
		} else {
			fmt.Println(cli.FormatSuccess("Database is up to date"))
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Database migrated to version %d", storage.ExpectedSchemaVersion)))
	return nil
}
