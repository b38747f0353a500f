package analysis

import (
	"time"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

// ReportMeta identifies one analysis result.
type ReportMeta struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HotspotRequest selects records around a point. A nil RadiusKm uses the
// service default, while an explicit zero matches only the point itself.
// Empty Tiers use domain.DefaultHotspotTiers.
type HotspotRequest struct {
	Point    domain.Geo
	RadiusKm *float64
	Tiers    []domain.Severity
}

// HotspotReport is the result of a point lookup.
type HotspotReport struct {
	ReportMeta
	Query domain.HotspotQuery  `json:"query"`
	Place string               `json:"place,omitempty"` // reverse-geocoded name of the query point
	Tiers domain.HotspotResult `json:"tiers"`
	Total int                  `json:"total"`
}

// ClusterPoint is one clustered record.
type ClusterPoint struct {
	RecordID string          `json:"record_id"`
	Area     string          `json:"area,omitempty"`
	Geo      domain.Geo      `json:"geo"`
	Severity domain.Severity `json:"severity,omitempty"`
	Label    int             `json:"label"` // cluster id or domain.Noise
}

// ClusterReport is the result of clustering every geolocated record. Cluster
// ids are only meaningful within one report.
type ClusterReport struct {
	ReportMeta
	Params   domain.ClusterParams    `json:"params"`
	Points   []ClusterPoint          `json:"points"`
	Clusters []domain.ClusterSummary `json:"clusters"`
	Noise    int                     `json:"noise"`
}

// TrendReport is the yearly severity series of one district.
type TrendReport struct {
	ReportMeta
	State    string              `json:"state"`
	District string              `json:"district"`
	Center   *domain.Geo         `json:"center,omitempty"` // omitted when the district cannot be located
	Series   []domain.TrendPoint `json:"series"`
}

// SeverityReport is the severity index of one district, for one year or
// all years when Year is 0.
type SeverityReport struct {
	ReportMeta
	State    string      `json:"state"`
	District string      `json:"district"`
	Year     int         `json:"year,omitempty"`
	Records  int         `json:"records"`
	Index    float64     `json:"index"`
	Center   *domain.Geo `json:"center,omitempty"`
}

// PredictionRequest names a catalog city and crime category.
type PredictionRequest struct {
	City      string `json:"city"`
	CrimeType string `json:"crime_type"`
	Year      int    `json:"year"`
}

// PredictionReport is the outcome of a city prediction.
type PredictionReport struct {
	ReportMeta
	domain.CityPrediction
}
