package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Studio-Zurich/fix-app-sub000/internal/infrastructure/persistence"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
)

func newCreateAdminCmd() *cobra.Command {
	in := service.CreateAdminInput{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Создаёт учётную запись администратора.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			auth := service.NewAuthService(persistence.NewAdminRepositoryAdapter(conn), service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL))
			admin, err := auth.CreateAdmin(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "администратор создан: %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email администратора")
	cmd.Flags().StringVar(&in.Password, "password", "", "пароль (не менее 10 символов)")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "отображаемое имя")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
