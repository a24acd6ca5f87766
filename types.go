package adminAuth

import (
	"context"

	"github.com/MrEthical07/adminAuth/session"
)

// Session is the token and payload returned by the session-issuing flows.
type Session = session.Session

// SessionData is the payload stored under a session token.
type SessionData = session.Data

// AdminUser is the durable admin identity record. An empty PasswordHash
// marks an unclaimed account.
type AdminUser struct {
	UserID       string
	Email        string
	Name         string
	PasswordHash string
	PasswordSalt string
}

// Claimed reports whether a password has been set for the account.
func (u *AdminUser) Claimed() bool {
	return u != nil && u.PasswordHash != ""
}

// PasswordUpdate carries the new credential material for a conditional update.
type PasswordUpdate struct {
	UserID       string
	PasswordHash string
	PasswordSalt string
}

// VerificationCode is the stored form of a one-time email code. TTL is the
// absolute expiry in unix seconds.
type VerificationCode struct {
	UserID   string
	CodeHash string
	CodeSalt string
	TTL      int64
}

// UserDetails is the projection returned to authenticated callers.
type UserDetails struct {
	Name string `json:"name"`
}

// CredentialStore owns admin user records.
//
// FetchByEmail and FetchByID return ErrNonExistentAdminUser when nothing
// matches. FetchByEmail returns ErrDuplicateAdminUser when the email index
// yields more than one record. UpdatePassword must only apply when the record
// still exists and returns ErrNonExistentAdminUser otherwise.
type CredentialStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	FetchByEmail(ctx context.Context, email string) (*AdminUser, error)
	FetchByID(ctx context.Context, userID string) (*AdminUser, error)
	UpdatePassword(ctx context.Context, update PasswordUpdate) error
}

// VerificationCodeStore owns one-time codes keyed by user id.
//
// Put computes the absolute ttl at write time. Fetch returns
// ErrNoActiveVerificationCode when no code is stored. Delete is idempotent.
type VerificationCodeStore interface {
	Put(ctx context.Context, code VerificationCode) error
	Fetch(ctx context.Context, userID string) (*VerificationCode, error)
	Delete(ctx context.Context, userID string) error
}

// SessionStore owns opaque session tokens. Fetch returns (nil, nil) for an
// unknown or expired token. Update only rewrites a live token and returns
// (nil, nil) when it is gone.
type SessionStore interface {
	Create(ctx context.Context, userID string, short bool) (*Session, error)
	Update(ctx context.Context, sessionID string, data SessionData) (*Session, error)
	Fetch(ctx context.Context, sessionID string) (*Session, error)
}

// Mailer delivers plain-text messages to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
