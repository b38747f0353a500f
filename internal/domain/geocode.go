package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Location sources reported by ResolveLocation.
const (
	LocationSourceTable   = "table"
	LocationSourceForward = "forward"
)

// ResolvedLocation is a district's map-centering point and where it came from.
type ResolvedLocation struct {
	State    string `json:"state"`
	District string `json:"district"`
	Geo      Geo    `json:"geo"`
	Source   string `json:"source"`
}

// ResolveLocation looks the district up in the location table and, when it
// is missing and a geocoder is configured, falls back to forward geocoding.
// Geocoder failures degrade to ErrLocationNotFound; callers omit the entity
// from map rendering rather than failing the request.
func ResolveLocation(ctx context.Context, idx LocationIndex, geocoder Geocoder, state, district string, logger *slog.Logger) (ResolvedLocation, error) {
	g, err := idx.Lookup(state, district)
	if err == nil {
		return ResolvedLocation{State: state, District: district, Geo: g, Source: LocationSourceTable}, nil
	}
	if geocoder == nil || !errors.Is(err, ErrLocationNotFound) {
		return ResolvedLocation{}, err
	}

	result, gerr := geocoder.ForwardGeocode(ctx, district, state)
	if gerr != nil {
		logger.Warn("forward geocoding failed",
			"state", state,
			"district", district,
			"error", gerr,
		)
		return ResolvedLocation{}, err
	}
	if result.Lat == 0 && result.Lon == 0 {
		return ResolvedLocation{}, err
	}

	g = Geo{Lat: result.Lat, Lon: result.Lon}
	if verr := g.Validate(); verr != nil {
		return ResolvedLocation{}, fmt.Errorf("%w: geocoder returned %w", ErrLocationNotFound, verr)
	}
	return ResolvedLocation{State: state, District: district, Geo: g, Source: LocationSourceForward}, nil
}

// DescribePoint returns a human-readable place name for a selected point,
// or "" when no geocoder is configured or the lookup fails.
func DescribePoint(ctx context.Context, geocoder Geocoder, point Geo, logger *slog.Logger) string {
	if geocoder == nil {
		return ""
	}
	result, err := geocoder.ReverseGeocode(ctx, point.Lat, point.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", point.Lat,
			"lon", point.Lon,
			"error", err,
		)
		return ""
	}
	if result.FormattedAddress != "" {
		return result.FormattedAddress
	}
	return result.PlaceName
}
