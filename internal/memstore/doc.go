// Package memstore holds in-memory implementations of the adminAuth store and
// mailer interfaces. They back the load test binary and HTTP tests where
// DynamoDB and SES are out of reach.
//
// All types are safe for concurrent use. Nothing is persisted.
package memstore
