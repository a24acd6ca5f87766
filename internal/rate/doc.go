// Package rate provides the Redis-backed failed-login limiter.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys live
// under the configured prefix:
//   - <prefix>:al:<email> for per-email failures
//   - <prefix>:ali:<ip> for per-IP failures
//
// Only failures are counted. A successful login clears both counters.
package rate
