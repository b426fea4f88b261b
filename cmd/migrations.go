package cmd

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"github.com/webhookx-io/showgate/config/modules"
	"github.com/webhookx-io/showgate/db"
	"github.com/webhookx-io/showgate/db/migrator"
)

var (
	quiet bool
)

// withMigrator runs fn with a migrator for the configured SQL driver.
func withMigrator(fn func(m *migrator.Migrator) error) error {
	cfg, err := initConfig(configurationFile)
	if err != nil {
		return err
	}

	var (
		sqlDB  *sql.DB
		driver string
	)
	switch cfg.Store.Driver {
	case modules.StoreDriverPostgres:
		sqlDB, err = db.NewSqlDB(cfg.Database)
		driver = db.DriverPostgres
	case modules.StoreDriverSqlite:
		sqlDB, err = db.NewSqliteDB(cfg.Sqlite)
		driver = db.DriverSqlite
	default:
		return fmt.Errorf("driver '%s' has no migrations", cfg.Store.Driver)
	}
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	return fn(migrator.New(sqlDB, &migrator.Options{Driver: driver, Quiet: quiet}))
}

func newMigrationsResetCmd() *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure? This operation is irreversible.") {
					return errors.New("canceled")
				}
			}
			return withMigrator(func(m *migrator.Migrator) error {
				if !quiet {
					cmd.Println("resetting database...")
				}
				if err := m.Reset(); err != nil {
					return err
				}
				if !quiet {
					cmd.Println("database successfully reset")
				}
				return nil
			})
		},
	}
	reset.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "yes")
	return reset
}

func newMigrationsCmd() *cobra.Command {

	migration := &cobra.Command{
		Use:   "migrations",
		Short: "Database migration commands",
		Long:  ``,
	}

	migration.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	migration.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrator.Migrator) error {
				status, err := m.Status()
				if err != nil {
					return err
				}
				cmd.Println(status)
				return nil
			})
		},
	})

	migration.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run any new migrations",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrator.Migrator) error {
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				cmd.Println("database is up-to-date")
				return nil
			})
		},
	})

	migration.AddCommand(newMigrationsResetCmd())

	return migration
}
