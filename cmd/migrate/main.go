// Command migrate runs schema operations for the catalog database.
package main

import (
	"fmt"
	"os"
	"strconv"

	"catalog/internal/config"
	"catalog/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Apply, inspect and roll back schema migrations",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(upCmd, autoCmd, statusCmd, downCmd)
}

func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending SQL migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := connect()
		if err != nil {
			return err
		}
		if err := database.RunMigrations(cmd.Context(), db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sql migrations applied")
		return nil
	},
}

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run GORM AutoMigrate (non-production only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "automigrations applied")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		status, err := database.GetSchemaStatus(cmd.Context(), db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
			status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
			len(status.AppliedVersions), len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			fmt.Fprintf(out, "pending: %06d_%s\n", m.Version, m.Name)
		}
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down <version>",
	Short: "Roll back one applied migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		_, db, err := connect()
		if err != nil {
			return err
		}
		if err := database.RollbackMigration(cmd.Context(), db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %d\n", version)
		return nil
	},
}
