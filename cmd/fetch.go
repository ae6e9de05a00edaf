package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches and normalizes turnstile data for a date range",
	RunE:  fetch,
}

func fetch(cmd *cobra.Command, args []string) error {
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

	raw, err := m.FetchSources(context.Background(), start, end)
	if err != nil {
		return err
	}

	readings := m.Normalize(raw, stations)

	if m.Storage != nil {
		if err := m.Persist(stations, readings); err != nil {
			return err
		}
	}

	fmt.Printf("%d raw rows, %d normalized readings\n", len(raw), len(readings))

	return nil
}
