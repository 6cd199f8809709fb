package apiclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/workzen/hrms-client/pkg/apiclient"

const (
	refreshResultSuccess = "success"
	refreshResultFailure = "failure"
	refreshResultReused  = "reused"
)

type meters struct {
	requests  metric.Int64Counter
	refreshes metric.Int64Counter
	duration  metric.Int64Histogram
}

func newMeters(provider metric.MeterProvider) (*meters, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(instrumentationName, metric.WithInstrumentationVersion(otel.Version()))

	requests, err := meter.Int64Counter(
		"hrms_client.requests",
		metric.WithDescription("Outgoing logical request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	refreshes, err := meter.Int64Counter(
		"hrms_client.refreshes",
		metric.WithDescription("Session refresh attempts"),
		metric.WithUnit("refresh"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refreshes counter: %w", err)
	}

	duration, err := meter.Int64Histogram(
		"hrms_client.duration",
		metric.WithDescription("End to end duration of a logical request including refresh and retry"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &meters{
		requests:  requests,
		refreshes: refreshes,
		duration:  duration,
	}, nil
}

func (m *meters) recordRequest(ctx context.Context, method string, statusCode int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status_class", statusClass(statusCode)),
	)

	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Milliseconds(), attrs)
}

func (m *meters) recordRefresh(ctx context.Context, result string) {
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// statusClass maps 404 to "4xx"; 0 stands for a transport failure.
func statusClass(code int) string {
	if code == 0 {
		return "error"
	}

	return strconv.Itoa(code/100) + "xx"
}
