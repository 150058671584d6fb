// Package storage provides the session-scoped storage medium behind the
// session store: the bearer-token and principal-kind markers plus the
// serialized state snapshot used for rehydration.
//
// The medium is deliberately non-durable: it lives for one interactive
// session and is cleared when that session ends, so credentials never
// outlive the runtime that obtained them. [Memory] is the default and dies
// with the process; [Redis] serves multi-process front-end shells that share
// one interactive session and bounds every key with a TTL for the same
// reason.
package storage
