package main

import (
	"fmt"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	var upMax int
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, migrate.Up, upMax)
		},
	}
	up.Flags().IntVar(&upMax, "max", 0, "Apply at most N migrations (0 = all)")

	var downMax int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, migrate.Down, downMax)
		},
	}
	down.Flags().IntVar(&downMax, "max", 1, "Roll back at most N migrations (0 = all)")

	status := &cobra.Command{
		Use:   "status",
		Short: "List applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := postgresConfig()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(cfg, nil)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			records, err := database.MigrationStatus(db)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{r.Id, r.AppliedAt.Local().Format(time.RFC3339)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Migration", "Applied at"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func postgresConfig() (*config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverSQLite {
		return nil, fmt.Errorf("sqlite schema is created automatically, migrations only apply to postgres")
	}
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, direction migrate.MigrationDirection, max int) error {
	cfg, err := postgresConfig()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(cfg, nil)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	n, err := database.Migrate(db, direction, max)
	if err != nil {
		return err
	}
	verb := "Applied"
	if direction == migrate.Down {
		verb = "Rolled back"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %d migration(s)\n", verb, n)
	return nil
}
