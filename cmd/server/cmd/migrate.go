package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/storage/postgres"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	databaseURL string
	path        string
}

// newMigrateCommand only needs a database URL, so it does not go through the
// full config validation that serve requires.
func newMigrateCommand() *cobra.Command {
	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Manage the PostgreSQL schema with golang-migrate.

The database URL comes from --database-url or DATABASE_URL (a .env file is
read if present). Migrations are read from --path or DATABASE_MIGRATIONS_PATH.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory (default: $DATABASE_MIGRATIONS_PATH or "+postgres.DefaultMigrationsPath+")")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.MigrateUp(opts.databaseURL, opts.path); err != nil {
				return err
			}
			return printMigrationStatus(cmd, opts)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return errors.New("--steps must be at least 1")
			}
			if err := postgres.MigrateDown(opts.databaseURL, opts.path, steps); err != nil {
				return err
			}
			return printMigrationStatus(cmd, opts)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printMigrationStatus(cmd, opts)
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func (o *migrateOptions) resolve() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if o.databaseURL == "" {
		o.databaseURL = os.Getenv("DATABASE_URL")
	}
	if o.databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if o.path == "" {
		o.path = os.Getenv("DATABASE_MIGRATIONS_PATH")
	}
	if o.path == "" {
		o.path = postgres.DefaultMigrationsPath
	}
	return nil
}

func printMigrationStatus(cmd *cobra.Command, opts *migrateOptions) error {
	version, dirty, err := postgres.MigrationVersion(opts.databaseURL, opts.path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if version == 0 {
		fmt.Fprintln(out, "no migrations applied")
		return nil
	}
	fmt.Fprintf(out, "version: %d\n", version)
	fmt.Fprintf(out, "dirty:   %t\n", dirty)
	return nil
}
