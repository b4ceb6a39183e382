package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Studio-Zurich/fix-app-sub000/internal/config"
	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
	"github.com/Studio-Zurich/fix-app-sub000/internal/usecase/maintenance"
)

func newSweepTempCmd() *cobra.Command {
	in := maintenance.SweepTempInput{}
	cmd := &cobra.Command{
		Use:   "sweep-temp",
		Short: "Находит (и с --delete удаляет) загрузки брошенных черновиков.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			files, err := storage.Open(cfg)
			if err != nil {
				return err
			}

			in.MinAge = cfg.DraftTTL
			if in.OlderThan < in.MinAge {
				fmt.Fprintf(cmd.ErrOrStderr(), "внимание: --older-than %s меньше DRAFT_TTL %s, в списке могут быть файлы живых черновиков\n", in.OlderThan, in.MinAge)
			}

			res, err := maintenance.NewSweepTempUseCase(files).Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, obj := range res.Stale {
				fmt.Fprintf(out, "%s\t%d\t%s\n", obj.Path, obj.Size, obj.ModTime.UTC().Format(time.RFC3339))
			}
			if in.Delete {
				fmt.Fprintf(out, "удалено: %d из %d\n", res.Deleted, len(res.Stale))
			} else {
				fmt.Fprintf(out, "найдено: %d (для удаления добавьте --delete)\n", len(res.Stale))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&in.OlderThan, "older-than", 24*time.Hour, "минимальный возраст файла")
	cmd.Flags().BoolVar(&in.Delete, "delete", false, "удалить найденные файлы")
	return cmd
}
