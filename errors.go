package adminAuth

import (
	"errors"
	"net/http"
)

var (
	// ErrNonExistentAdminUser is returned when no admin user matches the given
	// email or user id, or when a conditional password update found no record.
	ErrNonExistentAdminUser = errors.New("non-existent admin user")
	// ErrAccountUnclaimed is returned by Login when the account has no password yet.
	ErrAccountUnclaimed = errors.New("account unclaimed")
	// ErrPasswordMismatch is returned when a new password and its confirmation differ.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrInvalidPassword covers both a failed strength check and a wrong login password.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrPasswordTooLong is returned when the configured hasher cannot accept the input length.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrEncryptionFailed is returned when the encryption service produced no ciphertext.
	ErrEncryptionFailed = errors.New("encryption failed")
	// ErrNoActiveVerificationCode is returned when no code is stored for the user.
	ErrNoActiveVerificationCode = errors.New("no active verification code")
	// ErrInvalidVerificationCode is returned when the supplied code does not match.
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	// ErrVerificationCodeExpired is returned when the stored code is past its ttl.
	ErrVerificationCodeExpired = errors.New("verification code expired")
	// ErrInvalidSession is returned when a session id does not resolve to a live session.
	ErrInvalidSession = errors.New("invalid session")
	// ErrRateLimited is returned when an optional limiter rejects the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrDuplicateAdminUser signals that more than one record shares an email.
	// It is an integrity fault and is never mapped to a client error.
	ErrDuplicateAdminUser = errors.New("duplicate admin user for email")
	// ErrEngineNotReady is returned by methods invoked on a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrorCode is the wire identifier returned to clients as {"message": code}.
type ErrorCode string

const (
	CodeNonExistentAdminUser     ErrorCode = "NON_EXISTENT_ADMIN_USER"
	CodeAccountUnclaimed         ErrorCode = "ACCOUNT_UNCLAIMED"
	CodePasswordMismatch         ErrorCode = "PASSWORD_MISMATCH"
	CodeInvalidPassword          ErrorCode = "INVALID_PASSWORD"
	CodePasswordTooLong          ErrorCode = "PASSWORD_TOO_LONG"
	CodeEncryptionFailed         ErrorCode = "ENCRYPTION_FAILED"
	CodeNoActiveVerificationCode ErrorCode = "NO_ACTIVE_VERIFICATION_CODE"
	CodeInvalidVerificationCode  ErrorCode = "INVALID_VERIFICATION_CODE"
	CodeVerificationCodeExpired  ErrorCode = "VERIFICATION_CODE_EXPIRED"
	CodeInvalidSession           ErrorCode = "INVALID_SESSION"
	CodeRateLimited              ErrorCode = "RATE_LIMITED"
	CodeInternalServerError      ErrorCode = "INTERNAL_SERVER_ERROR"

	// CodeInvalidRequest is produced by the HTTP boundary for bodies that fail
	// to read, decode or validate. No engine error maps to it.
	CodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrNonExistentAdminUser, CodeNonExistentAdminUser},
	{ErrAccountUnclaimed, CodeAccountUnclaimed},
	{ErrPasswordMismatch, CodePasswordMismatch},
	{ErrInvalidPassword, CodeInvalidPassword},
	{ErrPasswordTooLong, CodePasswordTooLong},
	{ErrEncryptionFailed, CodeEncryptionFailed},
	{ErrNoActiveVerificationCode, CodeNoActiveVerificationCode},
	{ErrInvalidVerificationCode, CodeInvalidVerificationCode},
	{ErrVerificationCodeExpired, CodeVerificationCodeExpired},
	{ErrInvalidSession, CodeInvalidSession},
	{ErrRateLimited, CodeRateLimited},
}

// CodeOf maps err onto its client-facing code. Errors outside the closed set,
// including ErrDuplicateAdminUser and store faults, map to
// CodeInternalServerError and report false.
func CodeOf(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code, true
		}
	}
	return CodeInternalServerError, false
}

// HTTPStatus is the status table for error codes. It is a pure function of
// the code and has no side effects.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeNonExistentAdminUser, CodeNoActiveVerificationCode:
		return http.StatusNotFound
	case CodeAccountUnclaimed,
		CodeInvalidRequest,
		CodePasswordMismatch,
		CodeInvalidPassword,
		CodePasswordTooLong,
		CodeInvalidVerificationCode,
		CodeVerificationCodeExpired:
		return http.StatusBadRequest
	case CodeInvalidSession:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeEncryptionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus is shorthand for CodeOf(err) followed by ErrorCode.HTTPStatus.
func HTTPStatus(err error) int {
	code, _ := CodeOf(err)
	return code.HTTPStatus()
}
