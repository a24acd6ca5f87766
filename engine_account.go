package adminAuth

import (
	"context"
)

// CheckAccountClaimed reports whether the admin user registered under email
// has set a password. Unknown emails fail with ErrNonExistentAdminUser.
func (e *Engine) CheckAccountClaimed(ctx context.Context, email string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	user, err := e.userByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user.Claimed(), nil
}

// AdminUserExists reports whether any admin user is registered under email.
func (e *Engine) AdminUserExists(ctx context.Context, email string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.credentials.Exists(ctx, email)
}

// GetUserDetails resolves sessionID and returns the display projection of
// its user.
func (e *Engine) GetUserDetails(ctx context.Context, sessionID string) (*UserDetails, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	userID, err := e.sessionUserID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.DetailsForUser(ctx, userID)
}

// DetailsForUser returns the display projection of userID. Callers are
// expected to have authorized the session already.
func (e *Engine) DetailsForUser(ctx context.Context, userID string) (*UserDetails, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	user, err := e.credentials.FetchByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserDetails{Name: user.Name}, nil
}

// RefreshSession extends a live session to the long lifetime under the same
// token.
func (e *Engine) RefreshSession(ctx context.Context, sessionID string) (*Session, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	sess, err := e.sessions.Fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidSession
	}

	refreshed, err := e.sessions.Update(ctx, sess.SessionID, sess.Data)
	if err != nil {
		return nil, err
	}
	// Expired between Fetch and Update.
	if refreshed == nil {
		return nil, ErrInvalidSession
	}

	e.metricInc(MetricSessionRefreshed)
	e.emitAudit(ctx, auditEventSessionRefreshed, true, refreshed.Data.UserID, nil, nil)
	return refreshed, nil
}

func (e *Engine) sessionUserID(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	sess, err := e.sessions.Fetch(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ErrInvalidSession
	}
	return sess.Data.UserID, nil
}
