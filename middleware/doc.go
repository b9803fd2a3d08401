// Package middleware exposes a net/http adapter that authenticates requests
// through authflow.Engine and injects the resolved identity into the request
// context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Leak which validation check failed; every rejection is a bare 401.
package middleware
