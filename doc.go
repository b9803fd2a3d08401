// Package authflow provides the authentication and session-token engine for a
// contact-management backend: signed access/refresh/action tokens with strict
// per-scope acceptance, rotating refresh tokens revoked on mismatch, a
// Redis-backed read-through cache for authenticated-identity lookups, and
// single-use email-confirmation and password-reset link flows.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authflow is the engine only. HTTP routing, request validation, persistence,
// image upload and mail transport belong to the host application, which hands
// the engine a [UserStore], a mail.Mailer and a Redis client. The engine
// never opens its own connections.
//
// # What this package must NOT do
//
//   - Expose Redis keys, snapshot encodings, or nonce markers in its public API.
//   - Fail an authentication because the cache is down (resolve degrades to
//     the store; only the reset-nonce check fails closed).
//   - Report which token check failed to an untrusted caller.
package authflow
