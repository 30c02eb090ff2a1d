package cli

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/symptom-triage-engine/internal/database"
)

func (r *runtime) newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the PostgreSQL history schema",
		Long: `db runs the embedded schema migrations against storage.postgres_url, or the
database section when that is empty.`,
	}

	up := &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withMigrationRunner(func(runner *database.MigrationRunner) error {
				if err := runner.Up(cmd.Context()); err != nil {
					return err
				}
				return r.printVersion(runner)
			})
		},
	}

	rollback := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withMigrationRunner(func(runner *database.MigrationRunner) error {
				if err := runner.Down(cmd.Context()); err != nil {
					return err
				}
				return r.printVersion(runner)
			})
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withMigrationRunner(r.printVersion)
		},
	}

	cmd.AddCommand(up, rollback, version)
	return cmd
}

func (r *runtime) withMigrationRunner(fn func(*database.MigrationRunner) error) error {
	cfg, logger, err := r.loadConfig()
	if err != nil {
		return err
	}

	url := cfg.Storage.PostgresURL
	if url == "" {
		url = database.URL(cfg.Database)
	}
	runner, err := database.NewMigrationRunner(url, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migration runner")
		}
	}()
	return fn(runner)
}

func (r *runtime) printVersion(runner *database.MigrationRunner) error {
	version, dirty, err := runner.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		version, dirty, err = 0, false, nil
	}
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if r.jsonOutput {
		return r.printJSON(struct {
			Version uint `json:"version"`
			Dirty   bool `json:"dirty"`
		}{version, dirty})
	}
	fmt.Fprintf(r.stdout, "Schema version: %d (dirty: %t)\n", version, dirty)
	return nil
}
