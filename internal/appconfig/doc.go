// Package appconfig resolves process settings for the adminauth binaries.
//
// Layers apply in order, each overriding the previous one:
//
//  1. built-in defaults
//  2. .env files (godotenv), when present
//  3. process environment (ADMINAUTH_*)
//  4. command-line flags
//
// Stage namespaces deployments. Table names and the Redis key prefix derive
// from it unless set explicitly.
package appconfig
