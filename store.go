package sessauth

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/univcore/sessauth/storage"
)

// snapshotSchemaVersion guards the persisted session envelope against shape
// drift between releases. A version mismatch on Resume is treated the same
// as no snapshot.
const snapshotSchemaVersion = 1

// Store owns all authentication and authorization state for one interactive
// session. It is an explicit object: construct as many independent stores as
// needed through [Builder.Build]; there is no package-level instance.
//
// All exported methods are safe for concurrent use. Methods that talk to the
// gateway perform the network call outside the state lock, then re-acquire
// it to commit, so a slow backend never blocks state reads.
type Store struct {
	config  Config
	gateway Gateway
	codec   TokenCodec
	storage storage.Store
	audit   *auditDispatcher
	metrics *Metrics

	instanceID string

	mu                  sync.Mutex
	user                *User
	token               string
	authenticated       bool
	loading             bool
	lastError           string
	permissionsCachedAt time.Time
	epoch               uint64
	closed              bool

	refreshGroup singleflight.Group

	// now is replaced in tests to pin the clock.
	now func() time.Time
}

type snapshotEnvelope struct {
	SchemaVersion       int       `json:"schema_version"`
	User                *User     `json:"user"`
	Token               string    `json:"token"`
	PermissionsCachedAt time.Time `json:"permissions_cached_at"`
}

// InstanceID returns the unique identifier of this store instance. It
// appears in audit metadata so events from concurrent stores can be told
// apart.
func (s *Store) InstanceID() string {
	return s.instanceID
}

// Authenticated reports whether the store holds a committed session.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// CurrentUser returns a copy of the authenticated principal, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.user)
}

// Token returns the current bearer token, or the empty string.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Loading reports whether a login is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the user-facing message of the most recent failed
// operation, cleared on the next attempt.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Epoch returns the current session generation. It advances on every login,
// logout and forced logout; async completions tagged with an older epoch are
// discarded.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Resume restores a previously persisted session from storage. It is a
// no-op returning nil when no snapshot exists; any decode failure also
// resolves to an empty session rather than an error, since a torn snapshot
// must never wedge startup.
func (s *Store) Resume(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, storage.KeySnapshot)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}

	var env snapshotEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.SchemaVersion != snapshotSchemaVersion {
		log.Print("sessauth: discarding unreadable session snapshot")
		_ = s.storage.Delete(ctx, storage.KeySnapshot)
		return nil
	}
	if env.User == nil || env.Token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.user = env.User
	s.token = env.Token
	s.authenticated = true
	s.permissionsCachedAt = env.PermissionsCachedAt
	s.epoch++
	return nil
}

// Snapshot returns the current session state as a JSON envelope suitable for
// diagnostics. Secrets beyond the bearer token itself are never present.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	env := snapshotEnvelope{
		SchemaVersion:       snapshotSchemaVersion,
		User:                cloneUser(s.user),
		Token:               s.token,
		PermissionsCachedAt: s.permissionsCachedAt,
	}
	s.mu.Unlock()
	return json.Marshal(env)
}

// persistSnapshot writes the session envelope to storage. Best-effort: a
// storage failure is logged and the in-memory session stays authoritative.
// Callers must NOT hold s.mu.
func (s *Store) persistSnapshot(ctx context.Context) {
	data, err := s.Snapshot()
	if err != nil {
		log.Print("sessauth: snapshot encode failed: ", err)
		return
	}
	if err := s.storage.Set(ctx, storage.KeySnapshot, string(data)); err != nil {
		log.Print("sessauth: snapshot persist failed: ", err)
	}
}

// Close shuts the store down: the audit queue is drained and session storage
// is released. State-mutating calls after Close return [ErrStoreClosed].
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.audit != nil {
		s.audit.close()
	}
	return s.storage.Close()
}

// clearSession wipes credential state. resetCache additionally clears the
// permission-cache timestamp; an explicit logout leaves it, a forced logout
// resets it. Caller must hold s.mu.
func (s *Store) clearSessionLocked(resetCache bool) {
	s.user = nil
	s.token = ""
	s.authenticated = false
	if resetCache {
		s.permissionsCachedAt = time.Time{}
	}
	s.epoch++
}

// clearStorage removes all session markers. Best-effort.
func (s *Store) clearStorage(ctx context.Context) {
	err := s.storage.Delete(ctx, storage.KeyToken, storage.KeyPrincipalKind, storage.KeySnapshot)
	if err != nil {
		log.Print("sessauth: session storage clear failed: ", err)
	}
}

func (s *Store) emit(event AuditEvent) {
	if s.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	event.Metadata["instance_id"] = s.instanceID
	s.audit.dispatch(event)
}

// Metrics exposes the store's metrics instance.
func (s *Store) Metrics() *Metrics {
	return s.metrics
}

// MetricsSnapshot copies the current counters and histograms. The exporters
// under metrics/export read through this method.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped because the
// dispatcher buffer was full.
func (s *Store) AuditDropped() uint64 {
	if s.audit == nil {
		return 0
	}
	return s.audit.droppedCount()
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Permissions != nil {
		out.Permissions = append([]string(nil), u.Permissions...)
	}
	return &out
}
