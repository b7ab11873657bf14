package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/glucose-go/internal/app"
)

var (
	showLimit       int
	statsWindow     time.Duration
	statsSince      string
	watchIterations int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch recent readings from Dexcom Share and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := getApp().Sync(cmd.Context())
		return err
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent stored readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}
		return getApp().Show(cmd.Context(), app.ShowOptions{Limit: showLimit})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise stored readings and time in range",
	RunE: func(cmd *cobra.Command, args []string) error {
		handle := getApp()
		opts := app.StatsOptions{Window: statsWindow}
		if statsSince != "" {
			since, err := handle.ParseSince(statsSince)
			if err != nil {
				return err
			}
			opts.Since = since
		} else if statsWindow <= 0 {
			return fmt.Errorf("--window must be greater than zero")
		}
		return handle.Stats(cmd.Context(), opts)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll Dexcom Share and report readings and alarms",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.WatchOptions{Iterations: watchIterations})
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 12, "Number of readings to display")
	statsCmd.Flags().DurationVar(&statsWindow, "window", 24*time.Hour, "How far back to summarise")
	statsCmd.Flags().StringVar(&statsSince, "since", "", "Summarise readings since this date, overriding --window")
	watchCmd.Flags().IntVar(&watchIterations, "iterations", 0, "Stop after this many polls (0 runs until interrupted)")
}
