package mlmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
	"github.com/couchcryptid/crime-hotspot-service/internal/observability"
)

// Client implements domain.Predictor against an HTTP model server that
// accepts feature rows and returns one predicted rate per row.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a model client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Predict returns the expected crimes per lakh of population.
func (c *Client) Predict(ctx context.Context, f domain.PredictionFeatures) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Features: [][]float64{{float64(f.Year), float64(f.CityCode), f.Population, float64(f.CrimeTypeCode)}},
	})
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	rate, err := c.do(req)
	c.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.PredictionRequests.WithLabelValues("error").Inc()
		c.logger.Warn("model request failed", "city_code", f.CityCode, "crime_type_code", f.CrimeTypeCode, "error", err)
		return 0, err
	}
	c.metrics.PredictionRequests.WithLabelValues("success").Inc()
	return rate, nil
}

func (c *Client) do(req *http.Request) (float64, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("model server error: status %d: %s", resp.StatusCode, body)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Predictions) != 1 {
		return 0, fmt.Errorf("model returned %d predictions for 1 row", len(out.Predictions))
	}
	return out.Predictions[0], nil
}

// Model server wire types.

type predictRequest struct {
	Features [][]float64 `json:"features"` // rows of [year, city_code, population, crime_type_code]
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}
