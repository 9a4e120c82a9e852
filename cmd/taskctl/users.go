package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ashureev/taskpilot/internal/config"
	"github.com/ashureev/taskpilot/internal/store"
	"github.com/ashureev/taskpilot/internal/users"
	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect the users table",
	}

	var dbPath, tz string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users without password hashes",
		Long: `List every row of the users table. Connection settings come from the
environment (DB_DRIVER, DB_PATH, MYSQL_DSN) unless --db names a SQLite file.
Dates are shown in --tz, then DISPLAY_TIMEZONE, then as stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg, loc, err := listSettings(dbPath, tz)
			if err != nil {
				return err
			}

			repo, err := store.Open(dbCfg)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			records, err := users.NewService(repo).List(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users.BuildPage(records, loc))
		},
	}
	list.Flags().StringVar(&dbPath, "db", "", "path to a SQLite database (overrides environment)")
	list.Flags().StringVar(&tz, "tz", "", "IANA time zone for dates, e.g. America/Sao_Paulo")

	cmd.AddCommand(list)
	return cmd
}

func listSettings(dbPath, tz string) (config.DatabaseConfig, *time.Location, error) {
	if dbPath != "" {
		loc, err := flagLocation(tz)
		return config.DatabaseConfig{Driver: config.DriverSQLite, Path: dbPath}, loc, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.DatabaseConfig{}, nil, err
	}
	if tz == "" {
		return cfg.Database, cfg.DisplayLocation, nil
	}
	loc, err := flagLocation(tz)
	return cfg.Database, loc, err
}

func flagLocation(tz string) (*time.Location, error) {
	loc, err := config.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz: %w", err)
	}
	return loc, nil
}

func printUsers(w io.Writer, page users.Page) error {
	if page.Empty() {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tSTATUS\tCREATED AT\tLAST LOGIN")
	for _, row := range page.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Username, row.Email, row.Status, row.Created, row.LastLogin)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, page.CountLabel)
	return err
}
