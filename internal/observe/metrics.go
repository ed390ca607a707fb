// Package observe provides application-wide observability primitives for
// rxscribe: OpenTelemetry metrics, tracing, and HTTP middleware that ties
// them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. Tests should use [NewMetrics]
// with a custom [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all rxscribe metrics.
const meterName = "github.com/medvox/rxscribe"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation. A nil *Metrics is valid: every Record* helper
// is a no-op on a nil receiver, so gateways can run without telemetry wired.
type Metrics struct {
	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// LLMDuration tracks LLM call latency, attributed by stage
	// ("extract" or "refine").
	LLMDuration metric.Float64Histogram

	// ProviderRequests counts vendor API calls. Attributes:
	//   provider (e.g. "deepgram", "openai"), kind ("stt"/"llm"), status ("ok"/"error").
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts vendor call failures. Attributes: provider, kind.
	ProviderErrors metric.Int64Counter

	// ExtractionFallbacks counts extractions that degraded to the local
	// fallback result. Attribute: reason ("vendor", "empty", "parse").
	ExtractionFallbacks metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	// method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// single-shot vendor calls on the dictation pipeline.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.STTDuration, err = m.Float64Histogram("rxscribe.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("rxscribe.llm.duration",
		metric.WithDescription("Latency of LLM extraction and refinement calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("rxscribe.provider.requests",
		metric.WithDescription("Count of vendor API calls."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("rxscribe.provider.errors",
		metric.WithDescription("Count of vendor API call failures."),
	); err != nil {
		return nil, err
	}
	if met.ExtractionFallbacks, err = m.Int64Counter("rxscribe.extraction.fallbacks",
		metric.WithDescription("Count of extractions degraded to the local fallback result."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("rxscribe.http.request.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordProviderCall records one vendor call outcome plus its latency.
// No-op on a nil receiver.
func (m *Metrics) RecordProviderCall(ctx context.Context, provider, kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		))
	}
	m.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))

	seconds := d.Seconds()
	switch kind {
	case "stt":
		m.STTDuration.Record(ctx, seconds, metric.WithAttributes(
			attribute.String("provider", provider),
		))
	case "llm":
		m.LLMDuration.Record(ctx, seconds, metric.WithAttributes(
			attribute.String("provider", provider),
		))
	}
}

// RecordFallback counts one degraded extraction. No-op on a nil receiver.
func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.ExtractionFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}
