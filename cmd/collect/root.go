package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/TrendingThreads/internal/config"
	"github.com/LJTian/TrendingThreads/internal/logging"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

var (
	sourcesFile string
	slotFlag    string
	verbose     bool
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect trending news and post one generated thread",
	Long: `collect gathers trending headlines for the current time slot, asks the
configured LLM for a short thread and posts it to the delivery channel.

Example usage:
  collect run                  # run the slot resolved from the current time
  collect run --slot 12:00     # force a slot
  collect preview              # show the ranked items without generating
  collect slot --at 23:10      # show which slot a time resolves to
  collect summary              # post today's delivered threads as a digest`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourcesFile, "sources", "", "sources file (default is $SOURCES_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd, previewCmd, slotCmd, summaryCmd)
}

func initConfig() error {
	cfg = config.Load()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logging.Init(level)
	if sourcesFile != "" {
		cfg.SourcesConfig = sourcesFile
	}
	slog.Debug("configuration loaded", "sources", cfg.SourcesConfig, "timezone", cfg.Timezone)
	return nil
}

// pickSlot returns the forced slot when label is set, otherwise the slot for now.
func pickSlot(sched *schedule.Schedule, label string, now time.Time) (schedule.TimeSlot, error) {
	if label == "" {
		return sched.Resolve(now), nil
	}
	slot, ok := sched.Slot(label)
	if !ok {
		return schedule.TimeSlot{}, fmt.Errorf("unknown slot %q (have %v)", label, sched.Labels())
	}
	return slot, nil
}
