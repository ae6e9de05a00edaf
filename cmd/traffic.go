package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Estimates weekday-vs-weekend commuter traffic per station",
	RunE:  traffic,
}

var week int

func init() {
	trafficCmd.Flags().IntVarP(&week, "week", "w", 0, "Target ISO week number")
}

func traffic(cmd *cobra.Command, args []string) error {
	if week < 1 || week > 53 {
		return fmt.Errorf("--week must be an ISO week number (1-53)")
	}

	start, end, err := parseDateRange()
	if err != nil {
		return err
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	stations, err := loadStations()
	if err != nil {
		return err
	}

	diffs, err := m.Run(context.Background(), start, end, stations, week)
	if err != nil {
		return err
	}

	for _, d := range diffs {
		fmt.Printf("%-32s % 12.1f % 12.1f  (%.6f, %.6f)\n",
			d.Station, d.EntryDiff, d.ExitDiff, d.Latitude, d.Longitude)
	}

	return nil
}
