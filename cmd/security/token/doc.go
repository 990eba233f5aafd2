// Package token mints the opaque reveal tokens handed to participants.
//
// Design goals:
//   - Tokens are unguessable: 32 bytes of crypto/rand entropy by default.
//   - Tokens are opaque hex strings safe to embed in URLs and emails.
//   - Tokens never appear in logs; use Redact for a stable log handle.
package token
