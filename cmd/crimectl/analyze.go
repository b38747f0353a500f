package main

import (
	"strings"

	"github.com/spf13/cobra"

	geojsonadapter "github.com/couchcryptid/crime-hotspot-service/internal/adapter/geojson"
	"github.com/couchcryptid/crime-hotspot-service/internal/analysis"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "List records near a point, grouped by severity",
	RunE:  runHotspots,
}

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Group geolocated records by density",
	RunE:  runClusters,
}

var trendCmd = &cobra.Command{
	Use:   "trend <state> <district>",
	Short: "Yearly severity index of a district",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrend,
}

var severityCmd = &cobra.Command{
	Use:   "severity <state> <district>",
	Short: "Severity index of a district",
	Args:  cobra.ExactArgs(2),
	RunE:  runSeverity,
}

func init() {
	f := hotspotsCmd.Flags()
	f.Float64("lat", 0, "latitude of the selected point")
	f.Float64("lon", 0, "longitude of the selected point")
	f.Float64("radius", 0, "search radius in km (default HOTSPOT_RADIUS_KM)")
	f.StringSlice("tiers", nil, "severity tiers to report (default high,moderate)")
	f.Bool("geojson", false, "print a GeoJSON feature collection")
	_ = hotspotsCmd.MarkFlagRequired("lat")
	_ = hotspotsCmd.MarkFlagRequired("lon")

	f = clustersCmd.Flags()
	f.Float64("epsilon", 0, "neighbourhood radius in km (default CLUSTER_EPSILON_KM)")
	f.Int("min-points", 0, "minimum neighbourhood size of a core point (default CLUSTER_MIN_POINTS)")
	f.Bool("geojson", false, "print a GeoJSON feature collection")

	severityCmd.Flags().Int("year", 0, "restrict to one year (0 means all years)")

	rootCmd.AddCommand(hotspotsCmd, clustersCmd, trendCmd, severityCmd)
}

func runHotspots(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	lat, _ := f.GetFloat64("lat")
	lon, _ := f.GetFloat64("lon")
	rawTiers, _ := f.GetStringSlice("tiers")
	asGeoJSON, _ := f.GetBool("geojson")

	tiers := make([]domain.Severity, 0, len(rawTiers))
	for _, t := range rawTiers {
		sev, err := domain.ParseSeverity(strings.TrimSpace(t))
		if err != nil {
			return err
		}
		tiers = append(tiers, sev)
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	req := analysis.HotspotRequest{Point: domain.Geo{Lat: lat, Lon: lon}, Tiers: tiers}
	if f.Changed("radius") {
		radius, _ := f.GetFloat64("radius")
		req.RadiusKm = &radius
	}
	report, err := svc.Hotspots(cmd.Context(), req)
	if err != nil {
		return err
	}
	if asGeoJSON {
		return printJSON(cmd.OutOrStdout(), geojsonadapter.Hotspots(report))
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func runClusters(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	epsilon, _ := f.GetFloat64("epsilon")
	minPoints, _ := f.GetInt("min-points")
	asGeoJSON, _ := f.GetBool("geojson")

	svc, err := newService()
	if err != nil {
		return err
	}
	report, err := svc.Clusters(cmd.Context(), domain.ClusterParams{EpsilonKm: epsilon, MinPoints: minPoints})
	if err != nil {
		return err
	}
	if asGeoJSON {
		return printJSON(cmd.OutOrStdout(), geojsonadapter.Clusters(report))
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func runTrend(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	report, err := svc.DistrictTrend(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func runSeverity(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")

	svc, err := newService()
	if err != nil {
		return err
	}
	report, err := svc.Severity(cmd.Context(), args[0], args[1], year)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
