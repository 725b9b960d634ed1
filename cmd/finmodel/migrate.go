package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"finmodel/pkg/core/store"
)

// --- Migrate Command ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the postgres writer",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ migrations applied"))
		return nil
	},
}

// --- Show Command ---

var showCmd = &cobra.Command{
	Use:   "show [run-id] [label]",
	Short: "Print a table stored by the postgres writer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		db, err := connect(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		t, rows, err := store.NewPostgresWriter(db).LoadTable(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(t, rows))
		return nil
	},
}

func connect(cmd *cobra.Command) (*store.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (FINMODEL_DATABASE_URL)")
	}
	return store.Connect(cmd.Context(), cfg.Database.URL)
}
