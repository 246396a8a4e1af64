package cmd

import (
	"context"
	"time"

	"matchday/core/config"
	"matchday/core/database"
	"matchday/feature/fixture"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncDryRun     bool
	syncBypass     bool
	syncFeedURL    string
	syncTimeoutMin int
)

// syncCmd runs one feed sync and exits. This is the entry point for cron.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one fixture sync against the provider feed",
	Long: `Fetches the provider feed once, reconciles it into the database, and
exits. Use --dry-run to preview the classification without writing.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(func(cfg *config.Config) {
			if syncFeedURL != "" {
				cfg.Provider.FeedURL = syncFeedURL
			}
		})
		logg := a.logger
		defer logg.Sync()

		if err := database.VerifySchema(a.db, database.RequiredTables); err != nil {
			logg.Fatal("Schema verification failed", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(syncTimeoutMin)*time.Minute)
		defer cancel()

		report, err := a.fixtures.Service().SyncFromFeed(ctx, fixture.SyncOptions{
			DryRun:                syncDryRun,
			BypassStateValidation: syncBypass,
			Source:                a.cfg.Server.Source,
		})
		if err != nil {
			logg.Fatal("Sync run failed", zap.Error(err))
		}

		logg.Info("Sync run finished",
			zap.String("run_id", report.RunID),
			zap.Bool("dry_run", report.DryRun),
			zap.Int("inserted", report.Result.Inserted),
			zap.Int("updated", report.Result.Updated),
			zap.Int("skipped", report.Result.Skipped),
			zap.Int("failed", report.Result.Failed),
			zap.Int("total", report.Result.Total))
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "compute the result without writing anything")
	syncCmd.Flags().BoolVar(&syncBypass, "bypass-state-validation", false, "allow backward state transitions (audited)")
	syncCmd.Flags().StringVar(&syncFeedURL, "feed", "", "override the configured provider feed URL")
	syncCmd.Flags().IntVar(&syncTimeoutMin, "timeout", 10, "overall run timeout in minutes")
	RootCmd.AddCommand(syncCmd)
}
