package sessauth

import (
	"context"
	"errors"
	"log"

	"github.com/univcore/sessauth/storage"
)

// Login authenticates creds against the gateway and commits the session.
// The bearer token and principal-kind marker are written to session storage
// before the call resolves, so a resumed process can refresh even if it died
// right after login. On failure the previous session state is untouched and
// [Store.LastError] carries a user-facing message.
func (s *Store) Login(ctx context.Context, creds Credentials) (*User, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	s.loading = true
	s.lastError = ""
	epoch := s.epoch
	s.mu.Unlock()

	if err := validateCredentials(creds); err != nil {
		return nil, s.failLogin(ctx, creds.Kind, err)
	}

	result, err := s.gateway.Login(ctx, creds)
	if err != nil {
		return nil, s.failLogin(ctx, creds.Kind, err)
	}

	user := s.mapRawUser(result.User, creds.Kind)

	// Storage writes precede the state commit so restart recovery can never
	// observe a committed session without its markers.
	if err := s.storage.Set(ctx, storage.KeyToken, result.AccessToken); err != nil {
		return nil, s.failLogin(ctx, creds.Kind, err)
	}
	if err := s.storage.Set(ctx, storage.KeyPrincipalKind, string(creds.Kind)); err != nil {
		return nil, s.failLogin(ctx, creds.Kind, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	if s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.Inc(MetricStaleResultDiscarded)
		s.rollbackLoginMarkers(ctx, result.AccessToken)
		return nil, ErrSessionExpired
	}
	s.user = user
	s.token = result.AccessToken
	s.authenticated = true
	s.loading = false
	s.lastError = ""
	s.permissionsCachedAt = s.now()
	s.epoch++
	s.mu.Unlock()

	s.persistSnapshot(ctx)

	s.metrics.Inc(MetricLoginSuccess)
	s.emit(AuditEvent{
		EventType: AuditLoginSuccess,
		UserID:    user.ID,
		Kind:      user.Kind,
		Epoch:     s.Epoch(),
		Success:   true,
	})
	return cloneUser(user), nil
}

// rollbackLoginMarkers removes the storage markers a discarded login wrote,
// so a never-committed session cannot be resurrected from storage. Markers a
// newer login has already replaced with its own are left alone.
func (s *Store) rollbackLoginMarkers(ctx context.Context, token string) {
	cur, err := s.storage.Get(ctx, storage.KeyToken)
	switch {
	case err == storage.ErrNotFound:
		_ = s.storage.Delete(ctx, storage.KeyPrincipalKind)
	case err == nil && cur == token:
		_ = s.storage.Delete(ctx, storage.KeyToken, storage.KeyPrincipalKind)
	}
}

// failLogin records a login failure: loading drops, lastError picks up the
// gateway's message when one exists or a localized fallback otherwise.
func (s *Store) failLogin(ctx context.Context, kind PrincipalKind, err error) error {
	msg := s.message(localeFromContext(ctx), msgLoginFailed)
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		msg = gwErr.Message
	}

	s.mu.Lock()
	s.loading = false
	s.lastError = msg
	s.mu.Unlock()

	s.metrics.Inc(MetricLoginFailure)
	s.emit(AuditEvent{
		EventType: AuditLoginFailure,
		Kind:      kind,
		Epoch:     s.Epoch(),
		Success:   false,
		Error:     err.Error(),
	})
	return err
}

// Logout ends the session unconditionally. The gateway is notified on a
// best-effort basis: a failed or unreachable backend never prevents the
// local session from being cleared. The permission-cache timestamp is
// deliberately left in place; only forced logouts reset it.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()

	if user != nil {
		if err := s.gateway.Logout(ctx, user.Kind); err != nil {
			log.Print("sessauth: gateway logout failed: ", err)
		}
	}

	s.clearStorage(ctx)

	s.mu.Lock()
	s.clearSessionLocked(false)
	epoch := s.epoch
	s.mu.Unlock()

	s.metrics.Inc(MetricLogout)
	event := AuditEvent{EventType: AuditLogout, Epoch: epoch, Success: true}
	if user != nil {
		event.UserID = user.ID
		event.Kind = user.Kind
	}
	s.emit(event)
}

// forceLogout tears the session down after a security failure (expired
// token, tampered permissions). Unlike Logout it resets the permission-cache
// timestamp and skips the gateway notification; the token being torn down is
// not worth presenting to the backend again.
func (s *Store) forceLogout(ctx context.Context, reason AuditEventType, detail string) {
	s.mu.Lock()
	user := s.user
	s.clearSessionLocked(true)
	epoch := s.epoch
	s.mu.Unlock()

	s.clearStorage(ctx)

	s.metrics.Inc(MetricForcedLogout)
	event := AuditEvent{
		EventType: AuditForcedLogout,
		Epoch:     epoch,
		Success:   true,
		Error:     detail,
		Metadata:  map[string]any{"reason": string(reason)},
	}
	if user != nil {
		event.UserID = user.ID
		event.Kind = user.Kind
	}
	s.emit(event)
}

// mapRawUser converts the gateway's raw principal into the canonical form.
// A missing permission list normalizes to a non-nil empty slice so the
// tamper check can distinguish "no permissions" from "never loaded".
func (s *Store) mapRawUser(raw RawUser, kind PrincipalKind) *User {
	perms := raw.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &User{
		ID:          raw.ID,
		FullName:    raw.FullName,
		Email:       raw.Email,
		Phone:       raw.Phone,
		AvatarURL:   raw.ImageURL,
		Kind:        kind,
		Role:        s.config.mapRole(raw.Role, kind),
		Permissions: perms,
	}
}
