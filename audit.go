package sessauth

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditEventType identifies the category of a session security event.
type AuditEventType string

const (
	AuditLoginSuccess      AuditEventType = "login_success"
	AuditLoginFailure      AuditEventType = "login_failure"
	AuditLogout            AuditEventType = "logout"
	AuditForcedLogout      AuditEventType = "forced_logout"
	AuditTokenExpired      AuditEventType = "token_expired"
	AuditTamperDetected    AuditEventType = "tamper_detected"
	AuditRefreshSuccess    AuditEventType = "refresh_success"
	AuditRefreshFailure    AuditEventType = "refresh_failure"
	AuditPermissionRefresh AuditEventType = "permission_refresh"
	AuditProfileUpdate     AuditEventType = "profile_update"
)

// AuditEvent is a single session security event. Events never contain
// credentials or raw tokens.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType AuditEventType `json:"event_type"`
	UserID    int64          `json:"user_id,omitempty"`
	Kind      PrincipalKind  `json:"kind,omitempty"`
	Epoch     uint64         `json:"epoch"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// AuditSink receives audit events from the store's dispatcher. Emit is
// called from a single dispatcher goroutine; implementations do not need to
// be safe for concurrent use. Emit must not block for long periods or the
// dispatcher buffer will fill.
type AuditSink interface {
	Emit(event AuditEvent)
}

// NoOpSink discards all events.
type NoOpSink struct{}

// Emit discards the event.
func (NoOpSink) Emit(AuditEvent) {}

// ChannelSink forwards events to a channel, for callers that want to consume
// events with their own goroutine. Events are dropped when the channel is
// full.
type ChannelSink struct {
	C chan AuditEvent
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan AuditEvent, buffer)}
}

// Emit sends the event on C, dropping it if C is full.
func (s *ChannelSink) Emit(event AuditEvent) {
	select {
	case s.C <- event:
	default:
	}
}

// JSONWriterSink writes each event as a JSON line to an io.Writer.
type JSONWriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewJSONWriterSink creates a JSONWriterSink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{w: w, enc: json.NewEncoder(w)}
}

// Emit writes the event as one JSON line. Encoding failures are ignored;
// audit output is best-effort.
func (s *JSONWriterSink) Emit(event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}
