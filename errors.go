package sessauth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by [Store.Login] when the gateway
	// rejects the provided identifier/secret pair or the payload fails
	// validation.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned by operations that require an active
	// session ([Store.UpdateProfile], [Store.UploadAvatar]).
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoPrincipalKind is returned by [Store.RefreshToken] when no
	// principal-kind marker exists in session storage.
	ErrNoPrincipalKind = errors.New("no principal kind marker")
	// ErrSessionExpired signals that the bearer token's claims carry an
	// expiry in the past; the session has been torn down.
	ErrSessionExpired = errors.New("session expired")
	// ErrPermissionsTampered signals that the locally held permission list
	// diverged from the token claims; the session has been torn down.
	ErrPermissionsTampered = errors.New("permission set diverged from token claims")
	// ErrStoreClosed is returned when an operation is invoked after
	// [Store.Close].
	ErrStoreClosed = errors.New("session store closed")
	// ErrStoreNotReady is returned when a Store is used before it was
	// initialized through [Builder.Build].
	ErrStoreNotReady = errors.New("session store not initialized")
)

// GatewayError carries a backend-supplied failure message alongside the HTTP
// status it arrived with. The store surfaces Message to the user verbatim
// when present, falling back to a localized generic message otherwise.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps credential-class gateway failures onto [ErrInvalidCredentials]
// so callers can match with errors.Is without inspecting status codes.
func (e *GatewayError) Unwrap() error {
	if e.StatusCode == 401 || e.StatusCode == 422 {
		return ErrInvalidCredentials
	}
	return nil
}
