//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/crime-hotspot-service/internal/adapter/kafka"
	"github.com/couchcryptid/crime-hotspot-service/internal/analysis"
	"github.com/couchcryptid/crime-hotspot-service/internal/config"
	"github.com/couchcryptid/crime-hotspot-service/internal/dataset"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
	"github.com/couchcryptid/crime-hotspot-service/internal/observability"
)

const testReportTopic = "test-analysis-reports"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("crime-hotspot-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// publishedReport is a report read back from the topic.
type publishedReport struct {
	Key     string
	Headers map[string]string
	Report  map[string]any
}

func readReport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedReport {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal report")

	return publishedReport{Key: string(msg.Key), Headers: headers, Report: report}
}

func newConsumer(broker string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReportTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
}

// TestPublisherRoundTrip verifies that a report written by kafka.Publisher
// arrives with its key, headers, and body intact.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaReportTopic: testReportTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	generatedAt := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	require.NoError(t, publisher.Publish(ctx, domain.AnalysisReport{
		ID:          "3b241101-e2bb-4255-8caf-4136c566a962",
		Type:        domain.AnalysisSeverity,
		GeneratedAt: generatedAt,
		Body:        map[string]any{"district": "Krishna", "index": 1.43},
	}))

	consumer := newConsumer(broker)
	t.Cleanup(func() { _ = consumer.Close() })

	got := readReport(ctx, t, consumer)
	assert.Equal(t, "3b241101-e2bb-4255-8caf-4136c566a962", got.Key)
	assert.Equal(t, "severity", got.Headers["analysis_type"])
	assert.Equal(t, "2024-04-26T15:10:00Z", got.Headers["generated_at"])
	assert.Equal(t, "severity", got.Report["type"])

	body, ok := got.Report["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Krishna", body["district"])
}

// TestServicePublishesReports wires the analysis service to a real broker and
// checks that each completed analysis lands on the report topic.
func TestServicePublishesReports(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	data, err := dataset.LoadFiles(dataset.Sources{
		Records:    "../dataset/testdata/crime_records.csv",
		Locations:  "../dataset/testdata/locations.csv",
		Cities:     "../dataset/testdata/cities.csv",
		Categories: "../dataset/testdata/crime_categories.csv",
	}, discardLogger())
	require.NoError(t, err)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaReportTopic: testReportTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	metrics := observability.NewMetricsForTesting()
	svc := analysis.New(data, analysis.Options{}, analysis.Collaborators{Publisher: publisher}, discardLogger(), metrics)

	hotspots, err := svc.Hotspots(ctx, analysis.HotspotRequest{Point: domain.Geo{Lat: 16.7107, Lon: 81.0952}})
	require.NoError(t, err)
	trend, err := svc.DistrictTrend(ctx, "Andhra Pradesh", "West Godavari")
	require.NoError(t, err)

	consumer := newConsumer(broker)
	t.Cleanup(func() { _ = consumer.Close() })

	received := map[string]publishedReport{}
	for len(received) < 2 {
		got := readReport(ctx, t, consumer)
		received[got.Key] = got
	}

	require.Contains(t, received, hotspots.ID)
	assert.Equal(t, "hotspots", received[hotspots.ID].Headers["analysis_type"])

	require.Contains(t, received, trend.ID)
	assert.Equal(t, "trend", received[trend.ID].Headers["analysis_type"])
	body, ok := received[trend.ID].Report["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "West Godavari", body["district"])
}
