package sessauth

import (
	"errors"
	"time"
)

// Config defines a public type used by sessauth APIs. Instances are
// configured before [Builder.Build] and treated as immutable afterwards.
type Config struct {
	// PermissionCacheTTL bounds how long a permission set fetched from an
	// authoritative source is trusted without re-verification.
	PermissionCacheTTL time.Duration
	// Roles maps raw backend role codes for staff principals onto the
	// closed canonical role set. Student principals ignore this table.
	Roles RoleMap
	// Locale selects the fallback language for user-facing error messages
	// when the request context carries none.
	Locale string

	Audit   AuditConfig
	Metrics MetricsConfig
}

// RoleMap maps a raw backend role code to a canonical [Role].
type RoleMap map[string]Role

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		PermissionCacheTTL: 15 * time.Minute,
		Roles:              defaultRoleMap(),
		Locale:             "en",
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func defaultRoleMap() RoleMap {
	return RoleMap{
		"admin":    RoleAdmin,
		"rector":   RoleAdmin,
		"dean":     RoleDean,
		"teacher":  RoleTeacher,
		"employee": RoleStaff,
		"staff":    RoleStaff,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Roles != nil {
		out.Roles = make(RoleMap, len(cfg.Roles))
		for raw, role := range cfg.Roles {
			out.Roles[raw] = role
		}
	}
	return out
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.PermissionCacheTTL <= 0 {
		return errors.New("PermissionCacheTTL must be > 0")
	}
	if len(c.Roles) == 0 {
		return errors.New("Roles mapping must be provided")
	}
	for raw, role := range c.Roles {
		if raw == "" {
			return errors.New("Roles mapping contains empty raw role code")
		}
		if !role.Valid() {
			return errors.New("Roles mapping targets a role outside the closed set")
		}
	}
	if _, ok := fallbackMessages[c.Locale]; !ok {
		return errors.New("unsupported Locale")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	return nil
}

// mapRole resolves a raw backend role code for the given principal kind.
// Students collapse onto [RoleStudent] regardless of the raw field; unknown
// staff codes deliberately land on [RoleRestricted], the least-privilege
// member, never on admin.
func (c *Config) mapRole(raw string, kind PrincipalKind) Role {
	if kind == KindStudent {
		return RoleStudent
	}
	if role, ok := c.Roles[raw]; ok {
		return role
	}
	return RoleRestricted
}
