// Package mail delivers plain-text email through Amazon SES.
//
// The [SES] sender is the email channel for verification codes. It sends a
// single-recipient message from a fixed, verified source address.
package mail
