package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Studio-Zurich/fix-app-sub000/internal/infrastructure/persistence"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
)

func newSeedTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-taxonomy <file.yaml>",
		Short: "Загружает типы и подтипы инцидентов из YAML (upsert по slug).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			taxonomy := service.NewTaxonomyService(persistence.NewTaxonomyRepositoryAdapter(conn), service.NewCacheService())
			res, err := taxonomy.Seed(ctx, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "типы: создано %d, обновлено %d; подтипы: создано %d, обновлено %d\n",
				res.TypesCreated, res.TypesUpdated, res.SubtypesCreated, res.SubtypesUpdated)
			return nil
		},
	}
}

func loadSeed(path string) (*service.TaxonomySeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть %s: %w", path, err)
	}
	defer f.Close()
	return service.ParseTaxonomySeed(f)
}
