// Package password implements one-way credential hashing and verification with bcrypt.
//
// # Output format
//
// Hashes use the standard bcrypt modular crypt encoding produced by
// golang.org/x/crypto/bcrypt; the salt is generated internally and embedded
// in the hash, so two hashes of the same plaintext differ.
//
// Verification returns a boolean verdict. A mismatch is an answer, not an
// error: [Hasher.Verify] never fails for a wrong password, only for inputs
// that are not bcrypt hashes at all, and even then the verdict is false.
//
// The [Hasher] supports transparent cost upgrades: if the stored hash was
// produced with a lower cost than configured, [Hasher.NeedsUpgrade] returns
// true so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy is the
// host application's concern.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other authFlow package.
//   - Log plaintext passwords.
package password
