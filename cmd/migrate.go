package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"course-api/config"
	"course-api/entities"
	"course-api/repository"
	"course-api/service"
)

// migrate creates the catalog schema and seeds the admin account from
// config when it does not exist yet.
func migrate(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "run schema migrations and seed the admin user",
		Run: func(cmd *cobra.Command, args []string) {
			repo := repository.NewRepo(cfg.DB)

			err := repo.GetDB().AutoMigrate(
				&entities.Course{},
				&entities.Lesson{},
				&entities.User{},
			)
			if err != nil {
				log.Fatal().Err(err).Msg("migration failed")
			}
			log.Info().Msg("schema migrated")

			if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
				log.Info().Msg("no admin credentials configured, skipping seed")
				return
			}

			ctx := context.Background()
			if _, err := repo.FindUserByEmail(ctx, cfg.Auth.AdminEmail); err == nil {
				log.Info().Str("email", cfg.Auth.AdminEmail).Msg("admin user already exists")
				return
			}

			hash, err := service.HashPassword(cfg.Auth.AdminPassword)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to hash admin password")
			}

			admin := &entities.User{
				Email:        cfg.Auth.AdminEmail,
				PasswordHash: hash,
			}
			if err := repo.CreateUser(ctx, admin); err != nil {
				log.Fatal().Err(err).Msg("failed to seed admin user")
			}
			log.Info().Str("email", admin.Email).Msg("admin user seeded")
		},
	}
}
