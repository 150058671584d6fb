package sessauth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/univcore/sessauth/jwt"
	"github.com/univcore/sessauth/storage"
)

// Builder assembles a [Store] from its providers. Zero-value defaults: an
// unverified JWT codec, in-memory session storage, no audit sink, metrics
// disabled.
type Builder struct {
	config  Config
	gateway Gateway
	codec   TokenCodec
	storage storage.Store
	sink    AuditSink

	configSet bool
	err       error
}

// New creates a Builder with package defaults.
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	b.configSet = true
	return b
}

// WithGateway sets the authentication backend. Required.
func (b *Builder) WithGateway(g Gateway) *Builder {
	b.gateway = g
	return b
}

// WithCodec replaces the default unverified JWT codec.
func (b *Builder) WithCodec(c TokenCodec) *Builder {
	b.codec = c
	return b
}

// WithStorage replaces the default in-memory session storage.
func (b *Builder) WithStorage(s storage.Store) *Builder {
	b.storage = s
	return b
}

// WithAuditSink enables audit dispatch to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled toggles counter recording; latency additionally enables
// the access-check histogram.
func (b *Builder) WithMetricsEnabled(enabled, latency bool) *Builder {
	b.config.Metrics.Enabled = enabled
	b.config.Metrics.EnableLatencyHistograms = latency
	return b
}

// Build validates the configuration and returns a ready Store.
func (b *Builder) Build() (*Store, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.gateway == nil {
		return nil, errors.New("sessauth: gateway is required")
	}

	cfg := b.config
	if !b.configSet {
		cfg = defaultConfig()
		cfg.Audit.Enabled = b.config.Audit.Enabled
		cfg.Metrics = b.config.Metrics
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = defaultConfig().Audit.BufferSize
		cfg.Audit.DropIfFull = true
	}
	if cfg.Roles == nil {
		cfg.Roles = defaultRoleMap()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec := b.codec
	if codec == nil {
		var err error
		codec, err = jwt.NewCodec(jwt.Config{VerifyMethod: jwt.MethodNone})
		if err != nil {
			return nil, err
		}
	}

	store := b.storage
	if store == nil {
		store = storage.NewMemory()
	}

	s := &Store{
		config:     cfg,
		gateway:    b.gateway,
		codec:      codec,
		storage:    store,
		metrics:    NewMetrics(cfg.Metrics),
		instanceID: uuid.NewString(),
		now:        time.Now,
	}

	if cfg.Audit.Enabled {
		sink := b.sink
		if sink == nil {
			sink = NoOpSink{}
		}
		s.audit = newAuditDispatcher(sink, cfg.Audit.BufferSize, cfg.Audit.DropIfFull)
	}

	return s, nil
}
