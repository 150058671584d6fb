// Package prometheus provides Prometheus collectors for sessauth metrics.
//
// [NewPrometheusExporter] accepts a [sessauth.Store] and exposes an [http.Handler]
// that renders all sessauth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed sessauth_*_total; the single histogram is
// sessauth_access_check_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate store state.
package prometheus
