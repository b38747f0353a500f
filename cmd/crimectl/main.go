// Command crimectl runs crime hotspot analyses against local data files and
// prints the reports as JSON.
//
// Usage:
//
//	crimectl hotspots --lat 16.7107 --lon 81.0952 --radius 5
//	crimectl clusters --epsilon 25 --min-points 3 --geojson
//	crimectl trend "Andhra Pradesh" "West Godavari"
//	crimectl severity "Andhra Pradesh" Krishna --year 2023
//	crimectl validate
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/crime-hotspot-service/internal/analysis"
	"github.com/couchcryptid/crime-hotspot-service/internal/config"
	"github.com/couchcryptid/crime-hotspot-service/internal/dataset"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
	"github.com/couchcryptid/crime-hotspot-service/internal/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

// Path overrides for the configured data sources.
var (
	dataPath       string
	locationsPath  string
	citiesPath     string
	categoriesPath string
	weightsPath    string
)

var rootCmd = &cobra.Command{
	Use:           "crimectl",
	Short:         "Crime hotspot and severity analysis",
	Long:          "Loads crime records from CSV and runs hotspot, clustering, trend, and severity analyses offline.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyPathFlags(cmd, c)
		cfg = c
		logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataPath, "data", "", "crime records CSV (overrides CRIME_DATA_PATH)")
	pf.StringVar(&locationsPath, "locations", "", "district locations CSV (overrides LOCATIONS_PATH)")
	pf.StringVar(&citiesPath, "cities", "", "city catalog CSV (overrides CITIES_PATH)")
	pf.StringVar(&categoriesPath, "categories", "", "crime category catalog CSV (overrides CRIME_CATEGORIES_PATH)")
	pf.StringVar(&weightsPath, "weights", "", "severity weights YAML (overrides SEVERITY_WEIGHTS_PATH)")
}

// applyPathFlags lets explicitly set flags win over the environment.
func applyPathFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		c.CrimeDataPath = dataPath
	}
	if flags.Changed("locations") {
		c.LocationsPath = locationsPath
	}
	if flags.Changed("cities") {
		c.CitiesPath = citiesPath
	}
	if flags.Changed("categories") {
		c.CrimeCategoriesPath = categoriesPath
	}
	if flags.Changed("weights") {
		c.SeverityWeightsPath = weightsPath
	}
}

func loadDataset() (*dataset.Dataset, error) {
	return dataset.LoadFiles(dataset.Sources{
		Records:        cfg.CrimeDataPath,
		Locations:      cfg.LocationsPath,
		Cities:         cfg.CitiesPath,
		Categories:     cfg.CrimeCategoriesPath,
		Weights:        cfg.SeverityWeightsPath,
		DefaultCeiling: cfg.SeverityCeiling,
	}, logger)
}

// newService builds an offline analysis service without a geocoder, model,
// or report stream. Metrics stay unregistered since nothing scrapes the CLI.
func newService() (*analysis.Service, error) {
	data, err := loadDataset()
	if err != nil {
		return nil, err
	}
	return analysis.New(data, analysis.Options{
		HotspotRadiusKm: cfg.HotspotRadiusKm,
		Cluster: domain.ClusterParams{
			EpsilonKm: cfg.ClusterEpsilonKm,
			MinPoints: cfg.ClusterMinPoints,
		},
	}, analysis.Collaborators{}, logger, observability.NewUnregisteredMetrics()), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crimectl:", err)
		os.Exit(1)
	}
}
