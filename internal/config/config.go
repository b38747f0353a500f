package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Data sources.
	CrimeDataPath       string
	LocationsPath       string
	CitiesPath          string
	CrimeCategoriesPath string
	SeverityWeightsPath string

	// Analysis parameters.
	SeverityCeiling  float64
	HotspotRadiusKm  float64
	ClusterEpsilonKm float64
	ClusterMinPoints int

	// Crime-rate model. An empty URL disables prediction.
	MLServiceURL       string
	MLTimeout          time.Duration
	PredictionCacheTTL time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxRateLimit float64 // requests per second

	// Report publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	mlTimeout, err := parseDuration("ML_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("PREDICTION_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	ceiling, err := parsePositiveFloat("SEVERITY_CEILING", 500)
	if err != nil {
		return nil, err
	}
	radius, err := parsePositiveFloat("HOTSPOT_RADIUS_KM", 5)
	if err != nil {
		return nil, err
	}
	epsilon, err := parsePositiveFloat("CLUSTER_EPSILON_KM", 127.42)
	if err != nil {
		return nil, err
	}
	minPoints, err := parsePositiveInt("CLUSTER_MIN_POINTS", 2)
	if err != nil {
		return nil, err
	}
	rateLimit, err := parsePositiveFloat("MAPBOX_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		CrimeDataPath:       sharedcfg.EnvOrDefault("CRIME_DATA_PATH", "data/crime_records.csv"),
		LocationsPath:       sharedcfg.EnvOrDefault("LOCATIONS_PATH", "data/locations.csv"),
		CitiesPath:          sharedcfg.EnvOrDefault("CITIES_PATH", "data/cities.csv"),
		CrimeCategoriesPath: sharedcfg.EnvOrDefault("CRIME_CATEGORIES_PATH", "data/crime_categories.csv"),
		SeverityWeightsPath: os.Getenv("SEVERITY_WEIGHTS_PATH"),

		SeverityCeiling:  ceiling,
		HotspotRadiusKm:  radius,
		ClusterEpsilonKm: epsilon,
		ClusterMinPoints: minPoints,

		MLServiceURL:       strings.TrimRight(os.Getenv("ML_SERVICE_URL"), "/"),
		MLTimeout:          mlTimeout,
		PredictionCacheTTL: cacheTTL,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxRateLimit: rateLimit,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "crime-analysis-reports"),
	}

	if cfg.CrimeDataPath == "" {
		return nil, errors.New("CRIME_DATA_PATH is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// PredictionEnabled reports whether a crime-rate model is configured.
func (c *Config) PredictionEnabled() bool {
	return c.MLServiceURL != ""
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parsePositiveFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", name)
	}
	return v, nil
}

func parsePositiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
