// Package dynamo implements the adminAuth credential and verification code
// stores on Amazon DynamoDB.
//
// # Tables
//
// Admin users: hash key userId, global secondary index on email (projection
// ALL). Attributes userId, email, name, passwordHash, passwordSalt.
//
// Verification codes: hash key userId, attributes codeHash, codeSalt and ttl.
// ttl holds unix seconds and should be configured as the table's TTL
// attribute so DynamoDB purges stale codes on its own.
//
// # Architecture boundaries
//
// The stores map DynamoDB outcomes onto adminAuth sentinel errors. Transport
// failures are wrapped with [ErrStoreUnavailable]. Neither store retries.
package dynamo
