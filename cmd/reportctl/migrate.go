package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Studio-Zurich/fix-app-sub000/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Применяет SQL миграции из MIGRATIONS_PATH.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			var names []string
			if dryRun {
				names, err = db.PendingMigrations(ctx, conn, cfg.MigrationsPath)
			} else {
				names, err = db.RunMigrations(ctx, conn, cfg.MigrationsPath)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "миграций нет")
				return nil
			}
			verb := "применена"
			if dryRun {
				verb = "ожидает"
			}
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", verb, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "только показать непримененные миграции")
	return cmd
}
