package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/TrendingThreads/internal/config"
)

var slotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Print the slot a time resolves to",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := config.LoadSchedule(cfg.SourcesConfig, cfg.Timezone)
		if err != nil {
			return err
		}

		at, _ := cmd.Flags().GetString("at")
		now, err := parseAt(at, time.Now(), sched.Location())
		if err != nil {
			return err
		}

		slot := sched.Resolve(now)
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s %s (%s, %d sources)\n",
			now.In(sched.Location()).Format("2006-01-02 15:04 MST"), slot.Label, slot.Category, slot.Format, len(slot.Sources))
		return nil
	},
}

func init() {
	slotCmd.Flags().String("at", "", "local time HH:MM (default now)")
}

// parseAt places an HH:MM clock reading on today's date in loc.
func parseAt(at string, now time.Time, loc *time.Location) (time.Time, error) {
	if at == "" {
		return now, nil
	}
	clock, err := time.Parse("15:04", at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q, want HH:MM", at)
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
