// Package geojson renders analysis reports as GeoJSON feature collections
// for map clients.
package geojson

import (
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/crime-hotspot-service/internal/analysis"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

// tierOrder fixes the feature order of hotspot collections.
var tierOrder = []domain.Severity{domain.SeverityHigh, domain.SeverityModerate, domain.SeverityLow}

// point builds a WGS-84 point. GeoJSON orders coordinates lon, lat.
func point(g domain.Geo) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{g.Lon, g.Lat}).SetSRID(4326)
}

// Hotspots renders one point feature per hotspot, high severity first.
func Hotspots(report analysis.HotspotReport) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, report.Total)}
	for _, tier := range tierOrder {
		for _, h := range report.Tiers[tier] {
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:       h.Record.ID,
				Geometry: point(*h.Record.Geo),
				Properties: map[string]any{
					"area":        h.Record.Area,
					"district":    h.Record.District,
					"state":       h.Record.State,
					"severity":    string(tier),
					"distance_km": h.DistanceKm,
				},
			})
		}
	}
	return fc
}

// Clusters renders one point feature per clustered record, followed by one
// centroid feature per cluster.
func Clusters(report analysis.ClusterReport) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(report.Points)+len(report.Clusters)),
	}
	for _, p := range report.Points {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       p.RecordID,
			Geometry: point(p.Geo),
			Properties: map[string]any{
				"kind":     "record",
				"area":     p.Area,
				"severity": string(p.Severity),
				"cluster":  p.Label,
				"noise":    p.Label == domain.Noise,
			},
		})
	}
	for _, c := range report.Clusters {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       "cluster-" + strconv.Itoa(c.ID),
			Geometry: point(c.Centroid),
			Properties: map[string]any{
				"kind":                "centroid",
				"cluster":             c.ID,
				"size":                c.Size,
				"mean_severity_score": c.MeanSeverityScore,
				"dominant_severity":   string(c.DominantSeverity),
			},
		})
	}
	return fc
}
