package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/TrendingThreads/internal/app"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Collect and rank a slot's news without generating or posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Collect(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		label, _ := cmd.Flags().GetString("slot")
		slot, err := pickSlot(a.Schedule, label, time.Now())
		if err != nil {
			return err
		}

		items := a.Engine.Collect(cmd.Context(), slot)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "slot %s (%s, %s): %d items\n", slot.Label, slot.Category, slot.Format, len(items))
		for i, it := range items {
			fmt.Fprintf(out, "%d. [%s] %s (%.0f)\n   %s\n", i+1, it.Source, it.Title, it.PopularityScore, it.Link)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().String("slot", "", "force a slot label such as 12:00")
}
