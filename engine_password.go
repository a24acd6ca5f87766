package adminAuth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/adminAuth/password"
)

// SetPassword claims or re-keys the account identified by userID.
//
// Checks run in a fixed order: the user must exist, newPassword must equal
// confirmNewPassword, and newPassword must satisfy the strength policy. The
// write is conditional on the record still existing.
func (e *Engine) SetPassword(ctx context.Context, userID, newPassword, confirmNewPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if _, err := e.credentials.FetchByID(ctx, userID); err != nil {
		return err
	}

	if newPassword != confirmNewPassword {
		return e.rejectPassword(ctx, userID, ErrPasswordMismatch)
	}
	if err := e.policy.Validate(newPassword); err != nil {
		return e.rejectPassword(ctx, userID, ErrInvalidPassword)
	}

	digest, err := e.passwordHash.Hash(ctx, newPassword)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrTooLong):
			return e.rejectPassword(ctx, userID, ErrPasswordTooLong)
		case errors.Is(err, password.ErrEncryptionFailed):
			e.logger.Error().Err(err).Str("user_id", userID).Msg("key service returned no ciphertext")
			return e.rejectPassword(ctx, userID, fmt.Errorf("%w: %v", ErrEncryptionFailed, err))
		default:
			return err
		}
	}

	if err := e.credentials.UpdatePassword(ctx, PasswordUpdate{
		UserID:       userID,
		PasswordHash: digest.Hash,
		PasswordSalt: digest.Salt,
	}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordSet)
	e.emitAudit(ctx, auditEventPasswordSet, true, userID, nil, nil)
	return nil
}

// SetPasswordWithSession resolves sessionID and sets the password of its
// user.
func (e *Engine) SetPasswordWithSession(ctx context.Context, sessionID, newPassword, confirmNewPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}

	userID, err := e.sessionUserID(ctx, sessionID)
	if err != nil {
		return err
	}
	return e.SetPassword(ctx, userID, newPassword, confirmNewPassword)
}

func (e *Engine) rejectPassword(ctx context.Context, userID string, err error) error {
	e.metricInc(MetricPasswordRejected)
	e.emitAudit(ctx, auditEventPasswordRejected, false, userID, err, nil)
	return err
}
