// Package session provides the Redis-backed store for opaque admin session tokens.
//
// # Storage layout
//
// Each session is a single key `<prefix>:<token>` holding the JSON document
// {"userId": "..."}. Expiry is enforced by Redis (SET ... EX); the store never
// polls or sweeps. Tokens are 32 random bytes, hex encoded.
//
// Upstash and other hosted Redis endpoints are reached through a rediss:// URL
// whose password is the service token.
//
// # Architecture boundaries
//
// This package owns token generation and persistence only. It does NOT look up
// admin users or decide what a missing session means. An absent token is
// reported as (nil, nil) and the caller maps it to its own error.
//
// # What this package must NOT do
//
//   - Import adminAuth (no upward imports).
//   - Store password material in [Data].
package session
