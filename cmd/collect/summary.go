package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/TrendingThreads/internal/app"
	"github.com/LJTian/TrendingThreads/internal/notifier"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Post a digest of one day's delivered threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.Full(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		date, _ := cmd.Flags().GetString("date")
		day := time.Now().In(a.Schedule.Location())
		if date != "" {
			day, err = time.ParseInLocation("2006-01-02", date, a.Schedule.Location())
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
			}
		}

		threads, err := a.ThreadLog.Day(day)
		if err != nil {
			return err
		}
		if len(threads) == 0 {
			slog.Info("no threads delivered", "date", day.Format("2006-01-02"))
			return nil
		}

		s, ok := a.Notifier.(notifier.SummarySender)
		if !ok {
			return fmt.Errorf("channel %s cannot send summaries", a.Notifier.Name())
		}
		if err := s.SendDailySummary(ctx, threads); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent summary of %d threads for %s\n", len(threads), day.Format("2006-01-02"))
		return nil
	},
}

func init() {
	summaryCmd.Flags().String("date", "", "day to summarize, YYYY-MM-DD (default today)")
}
