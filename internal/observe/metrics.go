// Package observe provides application-wide observability primitives for
// tagmend: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all tagmend metrics.
const meterName = "github.com/MrWong99/tagmend"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Tag pipeline ---

	// TagsProcessed counts tag records produced. Use with attributes:
	//   attribute.Bool("corrected", ...), attribute.Bool("translated", ...)
	TagsProcessed metric.Int64Counter

	// PipelineDuration tracks the time spent in one Process call.
	PipelineDuration metric.Float64Histogram

	// MatchDistance records the winning adjusted distance of every scored
	// (non-exact) match, accepted or not.
	MatchDistance metric.Float64Histogram

	// --- Vocabulary ---

	// VocabularyReloads counts reload attempts. Use with attribute:
	//   attribute.String("status", "ok"|"error")
	VocabularyReloads metric.Int64Counter

	// VocabularyEntries tracks the number of correction entries currently
	// served.
	VocabularyEntries metric.Int64UpDownCounter

	// --- Surfaces ---

	// LiveSessions tracks open live-preview WebSocket connections.
	LiveSessions metric.Int64UpDownCounter

	// CommandInvocations counts Discord slash command invocations. Use with
	// attributes:
	//   attribute.String("command", ...), attribute.String("status", ...)
	CommandInvocations metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries (in seconds) for in-process tag
// work, which normally finishes well under a millisecond.
var latencyBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1,
}

// distanceBuckets cover the interesting range around the default acceptance
// threshold of 2.5.
var distanceBuckets = []float64{
	0, 0.5, 1, 1.5, 2, 2.2, 2.5, 3, 4, 6,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TagsProcessed, err = m.Int64Counter("tagmend.tags.processed",
		metric.WithDescription("Total tag records produced, by correction and translation outcome."),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("tagmend.pipeline.duration",
		metric.WithDescription("Latency of one tag pipeline run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MatchDistance, err = m.Float64Histogram("tagmend.match.distance",
		metric.WithDescription("Best adjusted distance found by the vocabulary matcher."),
		metric.WithExplicitBucketBoundaries(distanceBuckets...),
	); err != nil {
		return nil, err
	}

	if met.VocabularyReloads, err = m.Int64Counter("tagmend.vocabulary.reloads",
		metric.WithDescription("Total vocabulary reload attempts by status."),
	); err != nil {
		return nil, err
	}
	if met.VocabularyEntries, err = m.Int64UpDownCounter("tagmend.vocabulary.entries",
		metric.WithDescription("Number of correction entries in the active vocabulary."),
	); err != nil {
		return nil, err
	}

	if met.LiveSessions, err = m.Int64UpDownCounter("tagmend.live.sessions",
		metric.WithDescription("Number of open live-preview connections."),
	); err != nil {
		return nil, err
	}
	if met.CommandInvocations, err = m.Int64Counter("tagmend.discord.commands",
		metric.WithDescription("Total Discord command invocations by command and status."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("tagmend.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTag counts one produced tag record.
func (m *Metrics) RecordTag(ctx context.Context, corrected, translated bool) {
	m.TagsProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Bool("corrected", corrected),
			attribute.Bool("translated", translated),
		),
	)
}

// RecordVocabularyReload counts a reload attempt and, on success, moves the
// entry gauge from oldLen to newLen.
func (m *Metrics) RecordVocabularyReload(ctx context.Context, err error, oldLen, newLen int) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.VocabularyReloads.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if err == nil && newLen != oldLen {
		m.VocabularyEntries.Add(ctx, int64(newLen-oldLen))
	}
}

// RecordCommand counts one Discord command invocation.
func (m *Metrics) RecordCommand(ctx context.Context, command string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CommandInvocations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("status", status),
		),
	)
}
