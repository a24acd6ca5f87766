package adminAuth

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/adminAuth/internal"
	"github.com/MrEthical07/adminAuth/password"
)

// SendVerificationCode issues a fresh one-time code for the admin user
// registered under email and mails it to them.
//
// An unknown email fails before any side effect. Any prior code is deleted
// before the new one is stored. If delivery fails after the code was stored
// the error is returned and the stored code stays valid.
func (e *Engine) SendVerificationCode(ctx context.Context, email string) error {
	if err := e.ready(); err != nil {
		return err
	}

	user, err := e.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := e.limited(ctx, "verification_send", user.UserID,
		e.verificationLimiter.CheckSend(ctx, user.UserID, clientIPFromContext(ctx))); err != nil {
		return err
	}

	code, err := internal.NewVerificationCode(e.config.VerificationCode.CodeBytes)
	if err != nil {
		return err
	}
	digest, err := e.codeHash.Hash(ctx, code)
	if err != nil {
		return err
	}

	if err := e.codes.Delete(ctx, user.UserID); err != nil {
		return err
	}
	if err := e.codes.Put(ctx, VerificationCode{
		UserID:   user.UserID,
		CodeHash: digest.Hash,
		CodeSalt: digest.Salt,
	}); err != nil {
		return err
	}

	to := user.Email
	if to == "" {
		to = email
	}
	body := fmt.Sprintf(e.config.VerificationCode.EmailBody, code)
	if err := e.mailer.Send(ctx, to, e.config.VerificationCode.EmailSubject, body); err != nil {
		e.logger.Error().Err(err).Str("user_id", user.UserID).Msg("verification email delivery failed")
		e.metricInc(MetricCodeSendFailure)
		e.emitAudit(ctx, auditEventCodeSendFailure, false, user.UserID, err, nil)
		return fmt.Errorf("deliver verification code: %w", err)
	}

	e.metricInc(MetricCodeSent)
	e.emitAudit(ctx, auditEventCodeSent, true, user.UserID, nil, nil)
	return nil
}

// VerifyEmail redeems a verification code and returns a short session bound
// to the user.
//
// Expired codes are deleted when detected. A wrong code leaves the stored
// code in place so the user can retry inside the window. A correct code is
// consumed exactly once.
func (e *Engine) VerifyEmail(ctx context.Context, email, code string) (*Session, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	user, err := e.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	stored, err := e.codes.Fetch(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	// The store purges expired items lazily, so the timestamp is checked here too.
	if !e.clock().Before(time.Unix(stored.TTL, 0)) {
		if err := e.codes.Delete(ctx, user.UserID); err != nil {
			return nil, err
		}
		e.metricInc(MetricCodeExpired)
		e.emitAudit(ctx, auditEventCodeRejected, false, user.UserID, ErrVerificationCodeExpired, nil)
		return nil, ErrVerificationCodeExpired
	}

	if err := e.limited(ctx, "verification_attempt", user.UserID,
		e.verificationLimiter.CheckAttempt(ctx, user.UserID, clientIPFromContext(ctx))); err != nil {
		return nil, err
	}

	ok, err := e.codeHash.Verify(ctx, internal.NormalizeVerificationCode(code), password.Digest{
		Hash: stored.CodeHash,
		Salt: stored.CodeSalt,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metricInc(MetricCodeInvalid)
		e.emitAudit(ctx, auditEventCodeRejected, false, user.UserID, ErrInvalidVerificationCode, nil)
		return nil, ErrInvalidVerificationCode
	}

	if err := e.codes.Delete(ctx, user.UserID); err != nil {
		return nil, err
	}
	if err := e.verificationLimiter.ResetAttempts(ctx, user.UserID); err != nil {
		e.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("verification attempt counter not reset")
	}

	sess, err := e.sessions.Create(ctx, user.UserID, true)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricCodeVerified)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventCodeVerified, true, user.UserID, nil, nil)
	return sess, nil
}
