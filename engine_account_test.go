package adminAuth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/adminAuth/session"
	"github.com/alicebob/miniredis/v2"
)

func TestCheckAccountClaimed(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	h.claimedUser(t, "u2", "b@x.com", "Correct123")
	ctx := context.Background()

	if _, err := h.engine.CheckAccountClaimed(ctx, "nobody@x.com"); !errors.Is(err, ErrNonExistentAdminUser) {
		t.Fatalf("expected ErrNonExistentAdminUser, got %v", err)
	}
	if claimed, err := h.engine.CheckAccountClaimed(ctx, "a@x.com"); err != nil || claimed {
		t.Fatalf("expected unclaimed, got %v %v", claimed, err)
	}
	if claimed, err := h.engine.CheckAccountClaimed(ctx, "b@x.com"); err != nil || !claimed {
		t.Fatalf("expected claimed, got %v %v", claimed, err)
	}
}

func TestAdminUserExists(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})

	if ok, err := h.engine.AdminUserExists(context.Background(), "a@x.com"); err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
	if ok, err := h.engine.AdminUserExists(context.Background(), "nobody@x.com"); err != nil || ok {
		t.Fatalf("expected absent, got %v %v", ok, err)
	}
}

func TestDuplicateEmailIsIntegrityFault(t *testing.T) {
	h := newTestEngine(t)
	h.engine.metrics = NewMetrics(MetricsConfig{Enabled: true})
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	h.users.add(AdminUser{UserID: "u2", Email: "a@x.com"})

	_, err := h.engine.CheckAccountClaimed(context.Background(), "a@x.com")
	if !errors.Is(err, ErrDuplicateAdminUser) {
		t.Fatalf("expected ErrDuplicateAdminUser, got %v", err)
	}
	if HTTPStatus(err) != 500 {
		t.Fatalf("expected 500, got %d", HTTPStatus(err))
	}
	if got := h.engine.metrics.Value(MetricIntegrityFault); got != 1 {
		t.Fatalf("expected integrity fault metric 1, got %d", got)
	}
}

func TestGetUserDetails(t *testing.T) {
	h := newTestEngine(t)
	h.claimedUser(t, "u1", "a@x.com", "Correct123")
	ctx := context.Background()

	if _, err := h.engine.GetUserDetails(ctx, "missing"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := h.engine.GetUserDetails(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for empty id, got %v", err)
	}

	sess, err := h.engine.Login(ctx, "a@x.com", "Correct123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	details, err := h.engine.GetUserDetails(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("get details failed: %v", err)
	}
	if details.Name != "Admin u1" {
		t.Fatalf("expected name Admin u1, got %q", details.Name)
	}

	if _, err := h.engine.DetailsForUser(ctx, "ghost"); !errors.Is(err, ErrNonExistentAdminUser) {
		t.Fatalf("expected ErrNonExistentAdminUser, got %v", err)
	}
}

func TestRefreshSessionExtendsLifetime(t *testing.T) {
	h := newTestEngine(t)
	ctx := context.Background()

	if _, err := h.engine.RefreshSession(ctx, "missing"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	sess, err := h.sessions.Create(ctx, "u1", true)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	h.redis.FastForward(4 * time.Minute)

	refreshed, err := h.engine.RefreshSession(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.SessionID != sess.SessionID || refreshed.Data.UserID != "u1" {
		t.Fatalf("expected same session, got %+v", refreshed)
	}
	if ttl := h.redis.TTL("aas:" + sess.SessionID); ttl != 30*time.Minute {
		t.Fatalf("expected ttl reset to 30m, got %v", ttl)
	}
}

func TestNilEngineNotReady(t *testing.T) {
	var e *Engine
	if _, err := e.Login(context.Background(), "a@x.com", "x"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := e.Authorize(context.Background(), "Bearer x"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

// lapsingSessions lets a token expire right after it is fetched.
type lapsingSessions struct {
	*session.Store
	mr *miniredis.Miniredis
}

func (s lapsingSessions) Fetch(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.Store.Fetch(ctx, sessionID)
	s.mr.Del("aas:" + sessionID)
	return sess, err
}

func TestRefreshSessionRejectsTokenThatExpiresMidRefresh(t *testing.T) {
	h := newTestEngine(t)
	ctx := context.Background()
	h.engine.sessions = lapsingSessions{Store: h.sessions, mr: h.redis}

	sess, err := h.sessions.Create(ctx, "u1", true)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := h.engine.RefreshSession(ctx, sess.SessionID); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if h.redis.Exists("aas:" + sess.SessionID) {
		t.Fatal("expected lapsed token to stay gone")
	}
}

func TestPingReportsSessionBackend(t *testing.T) {
	h := newTestEngine(t)
	ctx := context.Background()

	if _, err := h.engine.Ping(ctx); err != nil {
		t.Fatalf("expected healthy ping, got %v", err)
	}

	h.redis.SetError("down")
	if _, err := h.engine.Ping(ctx); !errors.Is(err, session.ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
