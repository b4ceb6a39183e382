package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/Studio-Zurich/fix-app-sub000/internal/config"
	"github.com/Studio-Zurich/fix-app-sub000/internal/db"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "reportctl [command]",
		Short:         "Служебные операции сервиса сообщений.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.Init(opts.logLevel)
			logger.SetTextFormatter()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "уровень логирования")

	cmd.AddCommand(
		newMigrateCmd(),
		newSeedTaxonomyCmd(),
		newSweepTempCmd(),
		newCreateAdminCmd(),
	)
	return cmd
}

// openDB загружает конфигурацию и подключается к базе.
func openDB(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("подключение к базе: %w", err)
	}
	return cfg, conn, nil
}
