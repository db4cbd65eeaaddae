package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"catalog/internal/bootstrap"
	"catalog/internal/config"

	"github.com/spf13/cobra"
)

// boot loads config and wires services without Redis.
func boot(ctx context.Context) (*bootstrap.Services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		return nil, err
	}
	return bootstrap.NewServices(ctx, cfg, db, nil)
}

// admin ingest <location>
var ingestCmd = &cobra.Command{
	Use:   "ingest <location>",
	Short: "Bulk-load products from a CSV (http(s) URL, s3://bucket/key or local path)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		services, err := boot(ctx)
		if err != nil {
			return err
		}

		report, err := services.Ingest.Ingest(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d products from %s (%s) as admin %d in %dms\n",
			report.Rows, report.Location, report.Source, report.AdminID, report.DurationMS)
		return nil
	},
}

// admin promote <username>
var promoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Grant admin rights to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], true)
	},
}

// admin demote <username>
var demoteCmd = &cobra.Command{
	Use:   "demote <username>",
	Short: "Revoke admin rights from a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], false)
	},
}

func setAdmin(cmd *cobra.Command, username string, isAdmin bool) error {
	ctx := cmd.Context()
	services, err := boot(ctx)
	if err != nil {
		return err
	}

	user, err := services.Users.SetAdmin(ctx, username, isAdmin)
	if err != nil {
		return err
	}
	verb := "demoted from"
	if isAdmin {
		verb = "promoted to"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "User %s (ID: %d) %s admin\n", user.Username, user.ID, verb)
	return nil
}

// admin list-admins
var listAdminsCmd = &cobra.Command{
	Use:   "list-admins",
	Short: "List all admin users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		services, err := boot(ctx)
		if err != nil {
			return err
		}

		admins, err := services.Users.ListAdmins(ctx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No admin users found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL")
		for _, u := range admins {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Email)
		}
		return w.Flush()
	},
}
