// Package mail defines the outbound-email contract the authentication engine
// depends on, plus two implementations: an SMTP sender for real deployments and
// a no-op sender for tests and mail-less environments.
//
// The engine treats mail delivery as best-effort. A failed send never fails the
// flow that triggered it; the engine logs and audits the failure and moves on.
//
// # Architecture boundaries
//
// This package renders plain-text transactional messages and delivers them. It
// knows nothing about tokens or accounts — callers hand it a recipient, a
// display name, and a ready-made link.
//
// # What this package must NOT do
//
//   - Mint or inspect tokens (links arrive fully formed).
//   - Retry or queue — delivery policy belongs to the host application.
//   - Accept a plaintext SMTP session (STARTTLS is enforced).
package mail
