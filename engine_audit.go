package adminAuth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventCodeSent           = "verification_code_sent"
	auditEventCodeSendFailure    = "verification_code_send_failure"
	auditEventCodeVerified       = "verification_code_verified"
	auditEventCodeRejected       = "verification_code_rejected"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventPasswordSet        = "password_set"
	auditEventPasswordRejected   = "password_set_rejected"
	auditEventSessionRefreshed   = "session_refreshed"
	auditEventIdentityMismatch   = "identity_mismatch"
	auditEventRateLimitTriggered = "rate_limit_triggered"
	auditEventIntegrityFault     = "integrity_fault"
)

// AuditErrorCode is the redacted error label carried by audit events.
type AuditErrorCode string

const (
	auditErrUserNotFound     AuditErrorCode = "user_not_found"
	auditErrUnclaimed        AuditErrorCode = "account_unclaimed"
	auditErrInvalidPassword  AuditErrorCode = "invalid_password"
	auditErrPasswordMismatch AuditErrorCode = "password_mismatch"
	auditErrPasswordTooLong  AuditErrorCode = "password_too_long"
	auditErrEncryption       AuditErrorCode = "encryption_failed"
	auditErrNoCode           AuditErrorCode = "no_active_code"
	auditErrInvalidCode      AuditErrorCode = "invalid_code"
	auditErrCodeExpired      AuditErrorCode = "code_expired"
	auditErrInvalidSession   AuditErrorCode = "invalid_session"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrDuplicate        AuditErrorCode = "duplicate"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(ctx context.Context, scope, userID string) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, userID, ErrRateLimited, func() map[string]string {
		return map[string]string{
			"scope": scope,
		}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNonExistentAdminUser):
		return auditErrUserNotFound
	case errors.Is(err, ErrAccountUnclaimed):
		return auditErrUnclaimed
	case errors.Is(err, ErrInvalidPassword):
		return auditErrInvalidPassword
	case errors.Is(err, ErrPasswordMismatch):
		return auditErrPasswordMismatch
	case errors.Is(err, ErrPasswordTooLong):
		return auditErrPasswordTooLong
	case errors.Is(err, ErrEncryptionFailed):
		return auditErrEncryption
	case errors.Is(err, ErrNoActiveVerificationCode):
		return auditErrNoCode
	case errors.Is(err, ErrInvalidVerificationCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrVerificationCodeExpired):
		return auditErrCodeExpired
	case errors.Is(err, ErrInvalidSession):
		return auditErrInvalidSession
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrDuplicateAdminUser):
		return auditErrDuplicate
	default:
		return auditErrInternal
	}
}
