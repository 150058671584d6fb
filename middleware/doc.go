// Package middleware exposes HTTP middleware adapters that enforce session
// and path authorization on top of a sessauth.Store.
//
// # Guards
//
//   - [Guard] — requires an authenticated session and a path grant.
//   - [RequireRole] — additionally restricts the wrapped handler to a role set.
//
// Each guard reads store state, applies the same prefix-matching rules the
// store uses for navigation, and injects the principal into the request
// context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Store calls. It does NOT
// implement authorization logic itself — all decisions are delegated to
// Store.CanAccessPath.
//
// # What this package must NOT do
//
//   - Decode tokens directly (delegates to the store's codec).
//   - Access session storage (the store handles I/O).
//   - Make authorization decisions beyond pass/reject from the store.
package middleware
