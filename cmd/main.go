package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/subwaylabs/turnstile"
	"github.com/subwaylabs/turnstile/downloader"
	"github.com/subwaylabs/turnstile/model"
	"github.com/subwaylabs/turnstile/parse"
	"github.com/subwaylabs/turnstile/storage"
)

var rootCmd = &cobra.Command{
	Use:          "turnstile",
	Short:        "MTA turnstile traffic tool",
	Long:         "Fetches MTA turnstile data and estimates commuter traffic",
	SilenceUsage: true,
}

var (
	catalogURL  string
	stationsCSV string
	cachePath   string
	dbDir       string
	startStr    string
	endStr      string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogURL, "catalog-url", "", turnstile.DefaultCatalogURL, "Turnstile data catalog page URL")
	rootCmd.PersistentFlags().StringVarP(&stationsCSV, "stations", "", "./datasets/station_coordinates.csv", "Station coordinates CSV")
	rootCmd.PersistentFlags().StringVarP(&cachePath, "cache", "", "", "Path to download cache file (no caching if unset)")
	rootCmd.PersistentFlags().StringVarP(&dbDir, "db-dir", "", "", "Directory for the sqlite database (no persistence if unset)")
	rootCmd.PersistentFlags().StringVarP(&startStr, "start", "s", "", "Start date, YYYY-MM-DD (exclusive)")
	rootCmd.PersistentFlags().StringVarP(&endStr, "end", "e", "", "End date, YYYY-MM-DD (inclusive, defaults to today)")
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(trafficCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newManager() (*turnstile.Manager, error) {
	m := turnstile.NewManager()
	m.CatalogURL = catalogURL

	if cachePath != "" {
		fs, err := downloader.NewFilesystem(cachePath)
		if err != nil {
			return nil, fmt.Errorf("creating download cache: %w", err)
		}
		m.Downloader = fs
	}

	if dbDir != "" {
		s, err := storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: dbDir})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		m.Storage = s
	}

	return m, nil
}

func loadStations() (map[string]model.StationCoord, error) {
	f, err := os.Open(stationsCSV)
	if err != nil {
		return nil, fmt.Errorf("opening stations file: %w", err)
	}
	defer f.Close()

	return parse.ParseStationCoords(f)
}

// The pipeline itself takes explicit dates; the "end defaults to now"
// convenience lives here, at the edge.
func parseDateRange() (time.Time, time.Time, error) {
	if startStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start is required")
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}

	end := time.Now()
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
	}

	return start, end, nil
}
