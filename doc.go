// Package sessauth implements the client-side session and authorization core
// used by front-end shells of the university administration platform. It owns
// the answer to "who is logged in, what can they do, and is that answer still
// trustworthy": bearer-token lifecycle, JWT-claim permission verification,
// tamper detection against locally cached permission lists, and a
// TTL-bounded permission cache refreshed in the background.
//
// The package is designed for concurrent consumers: Store methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// sessauth is the public surface. It exposes [Store], [Builder], [Config],
// and value types (User, Credentials, SecurityReport, MetricsSnapshot). The
// remote REST backend is reached only through the injected [Gateway]; token
// claims are read only through the injected [TokenCodec]. Session-scoped
// persistence goes through the storage subpackage, wire transport through
// gateway/httpapi, and metric export through metrics/export/.
//
// # What this package must NOT do
//
//   - Issue, sign, or re-sign bearer tokens; the backend is the only issuer.
//   - Keep credentials beyond the duration of the Login call.
//   - Derive an authorization decision anywhere but [Store.CanAccessPath].
//
// # Performance contract
//
// CanAccessPath is the hot path: it must not block on the network. The
// background permission refresh it triggers is fire-and-forget and
// deduplicated; its result never changes the outcome of the call that
// started it.
package sessauth
