// Package internal holds helpers private to adminAuth.
//
// random.go generates session tokens and verification codes from crypto/rand.
//
// # Sub-packages
//
//   - awsclient: shared AWS SDK configuration for DynamoDB, SES and KMS
//   - httpapi: chi router exposing the engine over HTTP
//   - appconfig: layered process configuration for cmd binaries
//   - limiters: verification code send and attempt limits
//   - rate: failed login limiter
package internal
