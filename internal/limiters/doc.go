// Package limiters provides the verification code limiters.
//
// [EmailVerificationLimiter] keeps two fixed windows per user, one for code
// delivery and one for code redemption, plus optional per-IP windows.
// All methods are nil-safe: calling any method on a nil receiver returns nil.
//
// Policy thresholds come from the Config supplied at construction time. The
// engine decides what a rejection means for the caller.
package limiters
