package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere returns the int64 sum data point value whose attributes contain
// every pair in want.
func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name string, want ...attribute.KeyValue) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", name)
	}
next:
	for _, dp := range sum.DataPoints {
		for _, kv := range want {
			v, ok := dp.Attributes.Value(kv.Key)
			if !ok || v.Emit() != kv.Value.Emit() {
				continue next
			}
		}
		return dp.Value
	}
	t.Fatalf("metric %q has no data point with %v", name, want)
	return 0
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.PipelineDuration.Record(ctx, 0.0001)
	m.PipelineDuration.Record(ctx, 0.0002)
	m.MatchDistance.Record(ctx, 2.5)
	m.MatchDistance.Record(ctx, 3)

	rm := collect(t, reader)

	for _, name := range []string{"tagmend.pipeline.duration", "tagmend.match.distance"} {
		t.Run(name, func(t *testing.T) {
			met := findMetric(rm, name)
			if met == nil {
				t.Fatalf("metric %q not found", name)
			}
			hist, ok := met.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("metric %q is not a histogram", name)
			}
			if len(hist.DataPoints) == 0 {
				t.Fatalf("metric %q has no data points", name)
			}
			if got := hist.DataPoints[0].Count; got != 2 {
				t.Errorf("sample count = %d, want 2", got)
			}
		})
	}
}

func TestRecordTag(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTag(ctx, true, true)
	m.RecordTag(ctx, true, true)
	m.RecordTag(ctx, false, true)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "tagmend.tags.processed",
		attribute.Bool("corrected", true), attribute.Bool("translated", true)); got != 2 {
		t.Errorf("corrected+translated = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "tagmend.tags.processed",
		attribute.Bool("corrected", false)); got != 1 {
		t.Errorf("uncorrected = %d, want 1", got)
	}
}

func TestRecordVocabularyReload(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordVocabularyReload(ctx, nil, 0, 40)
	m.RecordVocabularyReload(ctx, nil, 40, 42)
	m.RecordVocabularyReload(ctx, errors.New("bad yaml"), 42, 0)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "tagmend.vocabulary.reloads", Attr("status", "ok")); got != 2 {
		t.Errorf("ok reloads = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "tagmend.vocabulary.reloads", Attr("status", "error")); got != 1 {
		t.Errorf("error reloads = %d, want 1", got)
	}
	if got := sumWhere(t, rm, "tagmend.vocabulary.entries"); got != 42 {
		t.Errorf("entries gauge = %d, want 42", got)
	}
}

func TestRecordCommand(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCommand(ctx, "tags/check", nil)
	m.RecordCommand(ctx, "tags/check", errors.New("boom"))

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "tagmend.discord.commands",
		Attr("command", "tags/check"), Attr("status", "ok")); got != 1 {
		t.Errorf("ok = %d, want 1", got)
	}
}

func TestLiveSessionsGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.LiveSessions.Add(ctx, 1)
	m.LiveSessions.Add(ctx, 1)
	m.LiveSessions.Add(ctx, -1)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "tagmend.live.sessions"); got != 1 {
		t.Errorf("live sessions = %d, want 1", got)
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different pointers")
	}
}
