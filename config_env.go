package sessauth

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type envConfig struct {
	PermissionCacheTTL time.Duration `envconfig:"PERMISSION_CACHE_TTL" default:"15m"`
	Locale             string        `envconfig:"LOCALE" default:"en"`
	AuditEnabled       bool          `envconfig:"AUDIT_ENABLED" default:"false"`
	AuditBufferSize    int           `envconfig:"AUDIT_BUFFER_SIZE" default:"1024"`
	AuditDropIfFull    bool          `envconfig:"AUDIT_DROP_IF_FULL" default:"true"`
	MetricsEnabled     bool          `envconfig:"METRICS_ENABLED" default:"false"`
	LatencyHistograms  bool          `envconfig:"METRICS_LATENCY_HISTOGRAMS" default:"false"`
}

// ConfigFromEnv builds a Config from SESSAUTH_-prefixed environment
// variables on top of the package defaults. The role mapping is code-owned
// and not environment-tunable; an operator typo there would silently change
// privilege boundaries.
func ConfigFromEnv() (Config, error) {
	var env envConfig
	if err := envconfig.Process("sessauth", &env); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	cfg.PermissionCacheTTL = env.PermissionCacheTTL
	cfg.Locale = env.Locale
	cfg.Audit.Enabled = env.AuditEnabled
	cfg.Audit.BufferSize = env.AuditBufferSize
	cfg.Audit.DropIfFull = env.AuditDropIfFull
	cfg.Metrics.Enabled = env.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = env.LatencyHistograms

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
