package sessauth

import (
	"context"
	"log"

	"github.com/univcore/sessauth/storage"
)

// RefreshToken exchanges the current session for a fresh bearer token. The
// principal-kind marker in session storage selects the backend flow; without
// it the call fails with [ErrNoPrincipalKind]. A refresh rejected by the
// gateway ends the session: a token the backend will not renew is not worth
// keeping.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrStoreClosed
	}
	epoch := s.epoch
	s.mu.Unlock()

	rawKind, err := s.storage.Get(ctx, storage.KeyPrincipalKind)
	if err != nil {
		if err == storage.ErrNotFound {
			return "", ErrNoPrincipalKind
		}
		return "", err
	}
	kind := PrincipalKind(rawKind)
	if !kind.Valid() {
		return "", ErrNoPrincipalKind
	}

	result, err := s.gateway.RefreshToken(ctx, kind)
	if err != nil {
		s.metrics.Inc(MetricRefreshFailure)
		s.emit(AuditEvent{
			EventType: AuditRefreshFailure,
			Kind:      kind,
			Epoch:     s.Epoch(),
			Success:   false,
			Error:     err.Error(),
		})
		s.Logout(ctx)
		return "", err
	}

	if err := s.storage.Set(ctx, storage.KeyToken, result.AccessToken); err != nil {
		log.Print("sessauth: refreshed token persist failed: ", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrStoreClosed
	}
	if s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.Inc(MetricStaleResultDiscarded)
		return "", ErrSessionExpired
	}
	s.token = result.AccessToken
	// Fresh claims supersede the cached permission set when decodable.
	if claims, decodeErr := s.codec.Decode(result.AccessToken); decodeErr == nil && claims.Permissions != nil && s.user != nil {
		s.user.Permissions = append([]string(nil), claims.Permissions...)
		s.permissionsCachedAt = s.now()
	}
	s.mu.Unlock()

	s.persistSnapshot(ctx)

	s.metrics.Inc(MetricRefreshSuccess)
	s.emit(AuditEvent{
		EventType: AuditRefreshSuccess,
		Kind:      kind,
		Epoch:     s.Epoch(),
		Success:   true,
	})
	return result.AccessToken, nil
}

// FetchCurrentUser re-reads the authenticated principal from the gateway and
// replaces the local copy. Without a principal-kind marker it is a silent
// no-op; a gateway failure ends the session, since an identity the backend
// no longer vouches for must not linger locally. When the in-memory token is
// gone (fresh process, torn snapshot) the persisted one is restored alongside
// the principal; without a token anywhere there is nothing to commit, since
// an authenticated session always holds both a user and a token.
func (s *Store) FetchCurrentUser(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	hasToken := s.token != ""
	s.mu.Unlock()

	rawKind, err := s.storage.Get(ctx, storage.KeyPrincipalKind)
	if err != nil {
		return
	}
	kind := PrincipalKind(rawKind)
	if !kind.Valid() {
		return
	}

	storedToken := ""
	if !hasToken {
		storedToken, err = s.storage.Get(ctx, storage.KeyToken)
		if err != nil || storedToken == "" {
			log.Print("sessauth: identity refetch without a bearer token, skipping")
			return
		}
	}

	raw, err := s.gateway.CurrentUser(ctx, kind)
	if err != nil {
		log.Print("sessauth: current-user refetch failed: ", err)
		s.metrics.Inc(MetricIdentityRefetchFailure)
		s.Logout(ctx)
		return
	}

	user := s.mapRawUser(*raw, kind)

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.Inc(MetricStaleResultDiscarded)
		return
	}
	if s.token == "" {
		s.token = storedToken
	}
	s.user = user
	s.authenticated = true
	s.permissionsCachedAt = s.now()
	s.mu.Unlock()

	s.persistSnapshot(ctx)
}
