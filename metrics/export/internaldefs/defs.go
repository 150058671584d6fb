package internaldefs

import (
	sessauth "github.com/univcore/sessauth"
)

// CounterDef binds a core counter to its exported metric name.
type CounterDef struct {
	ID   sessauth.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram to its exported metric name.
type HistogramDef struct {
	ID   sessauth.MetricID
	Name string
	Help string
}

// CounterDefs is the shared counter table used by every exporter.
var CounterDefs = []CounterDef{
	{ID: sessauth.MetricLoginSuccess, Name: "sessauth_login_success_total", Help: "Successful login attempts."},
	{ID: sessauth.MetricLoginFailure, Name: "sessauth_login_failure_total", Help: "Failed login attempts."},
	{ID: sessauth.MetricLogout, Name: "sessauth_logout_total", Help: "User-initiated logouts."},
	{ID: sessauth.MetricForcedLogout, Name: "sessauth_forced_logout_total", Help: "Logouts forced by security checks."},
	{ID: sessauth.MetricRefreshSuccess, Name: "sessauth_refresh_success_total", Help: "Successful token refreshes."},
	{ID: sessauth.MetricRefreshFailure, Name: "sessauth_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: sessauth.MetricIdentityRefetchFailure, Name: "sessauth_identity_refetch_failure_total", Help: "Failed current-user refetches."},
	{ID: sessauth.MetricTokenExpired, Name: "sessauth_token_expired_total", Help: "Expired tokens observed during claim checks."},
	{ID: sessauth.MetricTamperDetected, Name: "sessauth_tamper_detected_total", Help: "Detected local/token permission divergences."},
	{ID: sessauth.MetricPermissionRefreshSuccess, Name: "sessauth_permission_refresh_success_total", Help: "Background permission refreshes that replaced the cache."},
	{ID: sessauth.MetricPermissionRefreshFailure, Name: "sessauth_permission_refresh_failure_total", Help: "Background permission refreshes that kept the stale cache."},
	{ID: sessauth.MetricStaleResultDiscarded, Name: "sessauth_stale_result_discarded_total", Help: "Async completions discarded for stale session generation."},
	{ID: sessauth.MetricAccessGranted, Name: "sessauth_access_granted_total", Help: "Access checks resolved to allow."},
	{ID: sessauth.MetricAccessDenied, Name: "sessauth_access_denied_total", Help: "Access checks resolved to deny."},
}

// HistogramDefs is the shared histogram table used by every exporter.
var HistogramDefs = []HistogramDef{
	{ID: sessauth.MetricAccessCheckLatency, Name: "sessauth_access_check_latency_seconds", Help: "CanAccessPath latency histogram."},
}

// HistogramBounds lists the bucket upper bounds in Prometheus le notation.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix lists the bucket bounds as metric-name-safe suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
