package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/TrendingThreads/internal/app"
	"github.com/LJTian/TrendingThreads/internal/config"
	"github.com/LJTian/TrendingThreads/internal/generator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one collect, generate and deliver cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.Full(ctx, cfg)
		if err != nil {
			if !errors.Is(err, config.ErrMissingEnv) {
				app.NotifyStartupError(ctx, cfg, slotFlag, err)
			}
			return err
		}
		defer a.Close()

		slot, err := pickSlot(a.Schedule, slotFlag, time.Now())
		if err != nil {
			return err
		}

		th, err := a.Runner.RunSlot(ctx, slot)
		if err != nil {
			return err
		}
		printThread(cmd, th)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&slotFlag, "slot", "", "force a slot label such as 12:00")
}

func printThread(cmd *cobra.Command, th *generator.Thread) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[%s] %s (%d chars, run %s)\n", th.TimeSlot, th.Category, th.CharCount, th.RunID)
	fmt.Fprintln(out, th.Content)
}
