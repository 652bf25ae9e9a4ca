package cmd

import (
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/learning-service/internal/app"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := postgres.Migrate(a.DB); err != nil {
				return err
			}
			if _, err := postgres.SeedPersonalityQuestions(ctx, a.DB); err != nil {
				return err
			}
		}

		return a.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply migrations and seed data before serving")
}
