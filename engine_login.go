package adminAuth

import (
	"context"
	"errors"

	"github.com/MrEthical07/adminAuth/internal/rate"
	"github.com/MrEthical07/adminAuth/password"
)

// Login checks password against the claimed account registered under email
// and returns a long session.
func (e *Engine) Login(ctx context.Context, email, secret string) (*Session, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	user, err := e.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Claimed() {
		e.metricInc(MetricLoginUnclaimed)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, ErrAccountUnclaimed, nil)
		return nil, ErrAccountUnclaimed
	}

	ip := clientIPFromContext(ctx)
	if err := e.loginLimiter.CheckLogin(ctx, email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.logLockout(ctx, user.UserID, email)
		}
		return nil, e.limited(ctx, "login", user.UserID, err)
	}

	digest := password.Digest{Hash: user.PasswordHash, Salt: user.PasswordSalt}
	ok, err := e.passwordHash.Verify(ctx, secret, digest)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := e.loginLimiter.IncrementLogin(ctx, email, ip); err != nil {
			e.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("login failure not counted")
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, ErrInvalidPassword, nil)
		return nil, ErrInvalidPassword
	}

	if err := e.loginLimiter.ResetLogin(ctx, email, ip); err != nil {
		e.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("login failure counter not reset")
	}
	e.rehashIfNeeded(ctx, user.UserID, secret, digest)

	sess, err := e.sessions.Create(ctx, user.UserID, false)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, nil, nil)
	return sess, nil
}

func (e *Engine) logLockout(ctx context.Context, userID, email string) {
	entry := e.logger.Warn().Str("user_id", userID)
	if n, err := e.loginLimiter.LoginAttempts(ctx, email); err == nil {
		entry = entry.Int("failed_attempts", n)
	}
	entry.Msg("login locked out")
}

// rehashIfNeeded upgrades a digest produced with outdated parameters. It
// never fails the login.
func (e *Engine) rehashIfNeeded(ctx context.Context, userID, secret string, digest password.Digest) {
	upgrader, ok := e.passwordHash.(password.Upgrader)
	if !ok {
		return
	}
	needs, err := upgrader.NeedsUpgrade(digest)
	if err != nil || !needs {
		return
	}

	fresh, err := e.passwordHash.Hash(ctx, secret)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("password rehash failed")
		return
	}
	if err := e.credentials.UpdatePassword(ctx, PasswordUpdate{
		UserID:       userID,
		PasswordHash: fresh.Hash,
		PasswordSalt: fresh.Salt,
	}); err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("password rehash not stored")
		return
	}
	e.metricInc(MetricPasswordRehashed)
}
