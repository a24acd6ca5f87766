package adminAuth

import "context"

type clientIPContextKey struct{}
type sessionUserIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// for per-IP rate limiting and audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithSessionUserID attaches the user id of an authorized session to ctx.
// The middleware package calls it after a successful authorization.
func WithSessionUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, sessionUserIDContextKey{}, userID)
}

// SessionUserIDFromContext returns the user id stored by WithSessionUserID.
func SessionUserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	userID, _ := ctx.Value(sessionUserIDContextKey{}).(string)
	return userID, userID != ""
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
