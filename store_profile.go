package sessauth

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// UpdateProfile pushes mutable identity fields to the gateway, then refetches
// the canonical principal so the local copy reflects whatever normalization
// the backend applied. Requires an active session.
func (s *Store) UpdateProfile(ctx context.Context, data ProfileUpdate) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return ErrNotAuthenticated
	}

	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if err := s.gateway.UpdateProfile(ctx, user.Kind, data); err != nil {
		msg := s.message(localeFromContext(ctx), msgProfileUpdateFailed)
		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.Message != "" {
			msg = gwErr.Message
		}
		s.mu.Lock()
		s.lastError = msg
		s.mu.Unlock()

		s.emit(AuditEvent{
			EventType: AuditProfileUpdate,
			UserID:    user.ID,
			Kind:      user.Kind,
			Epoch:     s.Epoch(),
			Success:   false,
			Error:     err.Error(),
		})
		return err
	}

	s.emit(AuditEvent{
		EventType: AuditProfileUpdate,
		UserID:    user.ID,
		Kind:      user.Kind,
		Epoch:     s.Epoch(),
		Success:   true,
	})

	s.FetchCurrentUser(ctx)
	return nil
}

// UploadAvatar streams a new avatar image to the gateway and patches only the
// avatar URL on the local principal; no other identity field changes.
// Requires an active session.
func (s *Store) UploadAvatar(ctx context.Context, filename string, content io.Reader) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrStoreClosed
	}
	user := s.user
	epoch := s.epoch
	s.mu.Unlock()
	if user == nil {
		return "", ErrNotAuthenticated
	}

	result, err := s.gateway.UploadAvatar(ctx, user.Kind, filename, content)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.Inc(MetricStaleResultDiscarded)
		return "", ErrSessionExpired
	}
	if s.user != nil {
		s.user.AvatarURL = result.ImageURL
	}
	s.mu.Unlock()

	s.persistSnapshot(ctx)
	return result.ImageURL, nil
}
