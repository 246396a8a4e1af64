package cmd

import (
	"log"

	"matchday/core/config"
	"matchday/core/database"
	"matchday/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd applies the embedded schema migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  `Applies all embedded schema migrations to the configured database.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		if err := database.Migrate(db); err != nil {
			logg.Fatal("Migration failed", zap.Error(err))
		}

		logg.Info("Migrations applied", zap.String("database", cfg.Database.Name))
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
