package sessauth

import (
	"context"
	"log"
	"time"

	"github.com/univcore/sessauth/permission"
)

// JWTPermissions returns the permission list carried by the current bearer
// token's claims. An undecodable token (foreign or legacy shape) yields nil
// without error; an expired token tears the session down and also yields
// nil. The claims are the authoritative copy, never the locally held list.
func (s *Store) JWTPermissions(ctx context.Context) []string {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil
	}
	if claims.Expired(s.now()) {
		s.metrics.Inc(MetricTokenExpired)
		s.forceLogout(ctx, AuditTokenExpired, ErrSessionExpired.Error())
		return nil
	}
	return claims.Permissions
}

// IsTokenValid cross-checks the locally held permission list against the
// token claims. Divergence means local state was manipulated; the session is
// torn down and false is returned. Tokens without a decodable permission
// claim pass the check, since there is nothing trusted to compare against.
func (s *Store) IsTokenValid(ctx context.Context) bool {
	s.mu.Lock()
	user := s.user
	token := s.token
	s.mu.Unlock()

	if user == nil || user.Permissions == nil || token == "" {
		return false
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		return true
	}
	if claims.Expired(s.now()) {
		s.metrics.Inc(MetricTokenExpired)
		s.forceLogout(ctx, AuditTokenExpired, ErrSessionExpired.Error())
		return false
	}
	if claims.Permissions == nil {
		return true
	}

	if !permission.Equal(user.Permissions, claims.Permissions) {
		log.Print("sessauth: security warning: local permission set diverged from token claims, forcing logout")
		s.metrics.Inc(MetricTamperDetected)
		s.emit(AuditEvent{
			EventType: AuditTamperDetected,
			UserID:    user.ID,
			Kind:      user.Kind,
			Epoch:     s.Epoch(),
			Success:   false,
			Error:     ErrPermissionsTampered.Error(),
		})
		s.forceLogout(ctx, AuditTamperDetected, ErrPermissionsTampered.Error())
		return false
	}
	return true
}

// IsPermissionsCacheValid reports whether the cached permission set is still
// within its TTL. The boundary is strict: a set exactly TTL old is already
// stale. A zero timestamp (never cached, or reset by a forced logout) is
// always stale.
func (s *Store) IsPermissionsCacheValid() bool {
	s.mu.Lock()
	cachedAt := s.permissionsCachedAt
	s.mu.Unlock()
	return s.permissionsCacheFresh(cachedAt)
}

func (s *Store) permissionsCacheFresh(cachedAt time.Time) bool {
	if cachedAt.IsZero() {
		return false
	}
	return s.now().Sub(cachedAt) < s.config.PermissionCacheTTL
}

// RefreshPermissionsInBackground refetches the permission set from the
// gateway without blocking the caller. It is a no-op while the cached set is
// still fresh, so callers may trigger it unconditionally. Concurrent triggers
// collapse into one in-flight fetch; a completion whose session generation no
// longer matches is discarded; a failed fetch keeps the stale cache, on the
// grounds that stale permissions beat a spuriously locked-out user.
func (s *Store) RefreshPermissionsInBackground(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.user == nil || s.token == "" {
		s.mu.Unlock()
		return
	}
	token := s.token
	epoch := s.epoch
	cachedAt := s.permissionsCachedAt
	s.mu.Unlock()

	if s.permissionsCacheFresh(cachedAt) {
		return
	}

	// The fetch must outlive the triggering request.
	bg := context.WithoutCancel(ctx)

	go func() {
		_, _, _ = s.refreshGroup.Do("permissions", func() (any, error) {
			result, err := s.gateway.Permissions(bg, token)
			if err != nil {
				log.Print("sessauth: background permission refresh failed, keeping stale cache: ", err)
				s.metrics.Inc(MetricPermissionRefreshFailure)
				s.emit(AuditEvent{
					EventType: AuditPermissionRefresh,
					Epoch:     s.Epoch(),
					Success:   false,
					Error:     err.Error(),
				})
				return nil, err
			}

			perms := result.Permissions
			if perms == nil {
				perms = []string{}
			}

			s.mu.Lock()
			if s.closed || s.epoch != epoch || s.user == nil {
				s.mu.Unlock()
				s.metrics.Inc(MetricStaleResultDiscarded)
				return nil, nil
			}
			s.user.Permissions = perms
			s.permissionsCachedAt = s.now()
			userID := s.user.ID
			kind := s.user.Kind
			s.mu.Unlock()

			s.persistSnapshot(bg)

			s.metrics.Inc(MetricPermissionRefreshSuccess)
			s.emit(AuditEvent{
				EventType: AuditPermissionRefresh,
				UserID:    userID,
				Kind:      kind,
				Epoch:     s.Epoch(),
				Success:   true,
			})
			return nil, nil
		})
	}()
}

// CanAccessPath decides whether the current principal may navigate to path.
// The decision order: no principal denies outright; a tampered session is
// torn down and denied; a background refresh is triggered unconditionally
// (and no-ops while the cache is fresh) while the current decision proceeds
// on the best available set (token claims first, local copy second). Admin
// role or a wildcard grant bypasses path matching entirely.
func (s *Store) CanAccessPath(ctx context.Context, path string) bool {
	start := s.now()
	allowed := s.canAccessPath(ctx, path)
	s.metrics.Observe(MetricAccessCheckLatency, s.now().Sub(start))

	if allowed {
		s.metrics.Inc(MetricAccessGranted)
	} else {
		s.metrics.Inc(MetricAccessDenied)
	}
	return allowed
}

func (s *Store) canAccessPath(ctx context.Context, path string) bool {
	s.mu.Lock()
	user := cloneUser(s.user)
	token := s.token
	s.mu.Unlock()

	if user == nil {
		return false
	}
	if !s.IsTokenValid(ctx) {
		return false
	}
	s.RefreshPermissionsInBackground(ctx)

	if user.Role == RoleAdmin {
		return true
	}

	effective := user.Permissions
	if token != "" {
		if claims, err := s.codec.Decode(token); err == nil && claims.Permissions != nil {
			effective = claims.Permissions
		}
	}
	if effective == nil {
		effective = []string{}
	}

	if permission.ContainsWildcard(effective) {
		return true
	}
	return permission.Grants(effective, path)
}
