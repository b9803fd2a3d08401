// Package token issues and verifies the compact signed tokens that carry every
// credential in the system: access and refresh bearer tokens, email-confirmation
// and password-reset links, and caller-defined action links.
//
// Every token binds a subject (the account email), an issued-at/expiry pair, and
// exactly one [Scope]. Decoding demands the expected scope up front, so a token
// minted for one purpose can never be replayed against another: a refresh token
// is not an access token, a reset link cannot confirm an email.
//
// # Failure semantics
//
// All decode failures wrap [ErrInvalidToken]. The concrete sentinels
// ([ErrInvalidSignature], [ErrExpired], [ErrWrongScope]) exist for audit trails;
// anything answering untrusted callers should surface only the umbrella so the
// failing check is not leaked.
//
// # What this package must NOT do
//
//   - Persist or look up tokens (statelessness is the point).
//   - Decide token lifetimes — callers pass the TTL per issuance.
//   - Import any other authFlow package.
package token
