// Package otel provides OpenTelemetry metric exporter bindings for sessauth
// counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each sessauth
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [sessauth.Store.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate store state.
package otel
