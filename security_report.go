package sessauth

import (
	"fmt"
	"time"
)

// SecurityReport summarizes the store's security posture for startup logging
// and operator review. It contains no secrets.
type SecurityReport struct {
	TokenVerification  string
	PermissionCacheTTL time.Duration
	StorageKind        string
	AuditActive        bool
	MetricsActive      bool
	RoleMappings       int
}

// SecurityReport builds a report from the store's live configuration.
func (s *Store) SecurityReport() SecurityReport {
	if s == nil {
		return SecurityReport{}
	}

	verification := "none (claims read unverified)"
	if v, ok := s.codec.(interface{ Verified() bool }); ok && v.Verified() {
		verification = "signature verified"
	}

	return SecurityReport{
		TokenVerification:  verification,
		PermissionCacheTTL: s.config.PermissionCacheTTL,
		StorageKind:        fmt.Sprintf("%T", s.storage),
		AuditActive:        s.audit != nil,
		MetricsActive:      s.metrics.Enabled(),
		RoleMappings:       len(s.config.Roles),
	}
}
