package cmd

import (
	"log"

	"matchday/core/config"
	"matchday/core/database"
	"matchday/core/logger"
	"matchday/core/storage"
	"matchday/feature/fixture"
	"matchday/feature/provider"
	"matchday/feature/run"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	runs     *run.Feature
	fixtures *fixture.Feature
}

// bootstrap loads configuration, the logger, the database, and the wired
// feature graph. Overrides run after loading, before anything is built. It
// exits the process on failure; commands cannot run without this baseline.
func bootstrap(overrides ...func(*config.Config)) *app {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logg)

	if !cfg.Server.IsValidSource() {
		logg.Fatal("Invalid write source configured", zap.String("source", cfg.Server.Source))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Feed snapshot archiving is optional.
	var archive storage.Client
	if cfg.Storage.Enabled {
		archive, err = storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		logg.Info("Feed snapshot archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	runs := run.NewFeature(db, logg)
	feed := provider.NewHTTPClient(cfg.Provider, logg)
	svc := fixture.NewService(db, feed, runs.Recorder(), archive, cfg.Storage.Bucket, logg, cfg.Sync)

	return &app{
		cfg:      cfg,
		logger:   logg,
		db:       db,
		runs:     runs,
		fixtures: fixture.NewFeature(svc),
	}
}
