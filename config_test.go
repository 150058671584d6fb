package sessauth

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults are valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name:      "zero cache TTL",
			mutate:    func(c *Config) { c.PermissionCacheTTL = 0 },
			wantValid: false,
		},
		{
			name:      "negative cache TTL",
			mutate:    func(c *Config) { c.PermissionCacheTTL = -time.Minute },
			wantValid: false,
		},
		{
			name:      "empty role mapping",
			mutate:    func(c *Config) { c.Roles = RoleMap{} },
			wantValid: false,
		},
		{
			name:      "empty raw role code",
			mutate:    func(c *Config) { c.Roles[""] = RoleAdmin },
			wantValid: false,
		},
		{
			name:      "role outside closed set",
			mutate:    func(c *Config) { c.Roles["superuser"] = Role("superuser") },
			wantValid: false,
		},
		{
			name:      "unsupported locale",
			mutate:    func(c *Config) { c.Locale = "fr" },
			wantValid: false,
		},
		{
			name:      "russian locale",
			mutate:    func(c *Config) { c.Locale = "ru" },
			wantValid: true,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestMapRole(t *testing.T) {
	cfg := defaultConfig()

	cases := []struct {
		name string
		raw  string
		kind PrincipalKind
		want Role
	}{
		{"staff admin", "admin", KindStaff, RoleAdmin},
		{"staff rector maps to admin", "rector", KindStaff, RoleAdmin},
		{"staff dean", "dean", KindStaff, RoleDean},
		{"staff teacher", "teacher", KindStaff, RoleTeacher},
		{"staff employee", "employee", KindStaff, RoleStaff},
		{"unknown staff role is least privilege", "warlock", KindStaff, RoleRestricted},
		{"empty staff role is least privilege", "", KindStaff, RoleRestricted},
		{"student ignores raw role", "admin", KindStudent, RoleStudent},
		{"student with empty role", "", KindStudent, RoleStudent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.mapRole(tc.raw, tc.kind); got != tc.want {
				t.Fatalf("mapRole(%q, %q) = %q, want %q", tc.raw, tc.kind, got, tc.want)
			}
		})
	}
}

func TestCloneConfigIsolatesRoleMap(t *testing.T) {
	original := defaultConfig()
	clone := cloneConfig(original)

	clone.Roles["teacher"] = RoleAdmin
	if original.Roles["teacher"] != RoleTeacher {
		t.Fatal("mutating the clone leaked into the original role map")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SESSAUTH_PERMISSION_CACHE_TTL", "30m")
	t.Setenv("SESSAUTH_LOCALE", "uz")
	t.Setenv("SESSAUTH_METRICS_ENABLED", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.PermissionCacheTTL != 30*time.Minute {
		t.Fatalf("TTL = %v, want 30m", cfg.PermissionCacheTTL)
	}
	if cfg.Locale != "uz" {
		t.Fatalf("Locale = %q, want uz", cfg.Locale)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled")
	}
	if len(cfg.Roles) == 0 {
		t.Fatal("expected default role map to be carried through")
	}
}

func TestConfigFromEnvRejectsBadLocale(t *testing.T) {
	t.Setenv("SESSAUTH_LOCALE", "de")

	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for unsupported locale")
	}
}
