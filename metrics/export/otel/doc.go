// Package otel provides OpenTelemetry metric bindings for the engine's
// counters and histograms.
//
// [NewOTelExporter] registers an Int64ObservableCounter per engine
// counter and Int64ObservableGauge instruments per histogram bucket. A
// single callback reads the engine's metrics snapshot on each
// collection cycle, so the hot path pays nothing for export.
//
// The package never owns the OTel MeterProvider; callers supply the
// Meter.
package otel
