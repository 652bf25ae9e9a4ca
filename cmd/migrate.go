package cmd

import (
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/pkg"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and seed the personality questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		seeded, err := postgres.SeedPersonalityQuestions(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("seed personality questions: %w", err)
		}

		logger.Info("Migration complete", "seeded_questions", seeded)
		return nil
	},
}
