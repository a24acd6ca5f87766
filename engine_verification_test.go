package adminAuth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/adminAuth/internal/limiters"
	"golang.org/x/crypto/bcrypt"
)

var codePattern = regexp.MustCompile(`^[0-9A-F]{6}$`)

func TestSendVerificationCodeUnknownEmailHasNoSideEffects(t *testing.T) {
	h := newTestEngine(t)

	err := h.engine.SendVerificationCode(context.Background(), "nobody@x.com")
	if !errors.Is(err, ErrNonExistentAdminUser) {
		t.Fatalf("expected ErrNonExistentAdminUser, got %v", err)
	}
	if h.codes.puts != 0 {
		t.Fatalf("expected no stored code, got %d puts", h.codes.puts)
	}
	if len(h.mailer.sent) != 0 {
		t.Fatalf("expected no email, got %d", len(h.mailer.sent))
	}
}

func TestSendVerificationCodeStoresHashAndMailsPlaintext(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com", Name: "Ada"})

	if err := h.engine.SendVerificationCode(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	code := h.mailer.lastCode(t)
	if !codePattern.MatchString(code) {
		t.Fatalf("expected six upper-case hex characters, got %q", code)
	}

	mail := h.mailer.sent[0]
	if mail.to != "a@x.com" || mail.subject != "Admin Verification Code" {
		t.Fatalf("unexpected email envelope: %+v", mail)
	}
	if mail.body != "Your verification code is: "+code {
		t.Fatalf("unexpected email body %q", mail.body)
	}

	stored := h.codes.codes["u1"]
	if stored.CodeHash == "" || strings.Contains(stored.CodeHash, code) {
		t.Fatal("expected a hashed code, not the plaintext")
	}
	wantTTL := h.clock.Now().Add(5 * time.Minute).Unix()
	if stored.TTL != wantTTL {
		t.Fatalf("expected ttl %d, got %d", wantTTL, stored.TTL)
	}
}

func TestSendVerificationCodeSupersedesPriorCode(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	first := h.mailer.lastCode(t)
	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	second := h.mailer.lastCode(t)
	if first == second {
		t.Skip("random codes collided")
	}

	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", first); !errors.Is(err, ErrInvalidVerificationCode) {
		t.Fatalf("expected superseded code to be rejected, got %v", err)
	}
	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", second); err != nil {
		t.Fatalf("expected latest code to verify, got %v", err)
	}
}

func TestSendVerificationCodeMailFailureKeepsCode(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	h.mailer.err = errors.New("ses throttled")

	err := h.engine.SendVerificationCode(context.Background(), "a@x.com")
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if HTTPStatus(err) != 500 {
		t.Fatalf("expected 500 for delivery failure, got %d", HTTPStatus(err))
	}
	if !h.codes.has("u1") {
		t.Fatal("expected stored code to remain after delivery failure")
	}
}

func TestVerifyEmailConsumesCodeOnce(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	code := h.mailer.lastCode(t)

	sess, err := h.engine.VerifyEmail(ctx, "a@x.com", code)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if sess.Data.UserID != "u1" {
		t.Fatalf("expected session for u1, got %q", sess.Data.UserID)
	}
	if ttl := h.redis.TTL("aas:" + sess.SessionID); ttl != 5*time.Minute {
		t.Fatalf("expected short session ttl 5m, got %v", ttl)
	}

	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", code); !errors.Is(err, ErrNoActiveVerificationCode) {
		t.Fatalf("expected ErrNoActiveVerificationCode on reuse, got %v", err)
	}
}

func TestVerifyEmailNormalizesInput(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	code := " " + strings.ToLower(h.mailer.lastCode(t)) + "\n"

	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", code); err != nil {
		t.Fatalf("expected lower-case padded code to verify, got %v", err)
	}
}

func TestVerifyEmailWrongCodeKeepsCode(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	code := h.mailer.lastCode(t)
	wrong := "ZZZZZZ"

	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", wrong); !errors.Is(err, ErrInvalidVerificationCode) {
		t.Fatalf("expected ErrInvalidVerificationCode, got %v", err)
	}
	if !h.codes.has("u1") {
		t.Fatal("expected code to survive a wrong attempt")
	}
	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", code); err != nil {
		t.Fatalf("expected retry with the right code to succeed, got %v", err)
	}
}

func TestVerifyEmailExpiredCodeIsDeleted(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	code := h.mailer.lastCode(t)

	h.clock.Advance(5 * time.Minute)

	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", code); !errors.Is(err, ErrVerificationCodeExpired) {
		t.Fatalf("expected ErrVerificationCodeExpired, got %v", err)
	}
	if h.codes.has("u1") {
		t.Fatal("expected expired code to be deleted")
	}
	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", code); !errors.Is(err, ErrNoActiveVerificationCode) {
		t.Fatalf("expected ErrNoActiveVerificationCode after expiry, got %v", err)
	}
}

func TestVerifyEmailWithoutCode(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})

	_, err := h.engine.VerifyEmail(context.Background(), "a@x.com", "ABCDEF")
	if !errors.Is(err, ErrNoActiveVerificationCode) {
		t.Fatalf("expected ErrNoActiveVerificationCode, got %v", err)
	}
	if HTTPStatus(err) != 404 {
		t.Fatalf("expected 404, got %d", HTTPStatus(err))
	}
}

func TestUnclaimedAccountScenario(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com", Name: "Ada"})
	ctx := context.Background()

	claimed, err := h.engine.CheckAccountClaimed(ctx, "a@x.com")
	if err != nil || claimed {
		t.Fatalf("expected unclaimed account, got %v %v", claimed, err)
	}

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	sess, err := h.engine.VerifyEmail(ctx, "a@x.com", h.mailer.lastCode(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if sess.Data.UserID != "u1" {
		t.Fatalf("expected session for u1, got %+v", sess.Data)
	}
	if h.codes.has("u1") {
		t.Fatal("expected code to be consumed")
	}

	if _, err := h.engine.Login(ctx, "a@x.com", "Whatever123"); !errors.Is(err, ErrAccountUnclaimed) {
		t.Fatalf("expected ErrAccountUnclaimed before set password, got %v", err)
	}

	if err := h.engine.SetPasswordWithSession(ctx, sess.SessionID, "longenough1A", "longenough1A"); err != nil {
		t.Fatalf("set password failed: %v", err)
	}
	if _, err := h.engine.Login(ctx, "a@x.com", "longenough1A"); err != nil {
		t.Fatalf("login after claim failed: %v", err)
	}
}

func withVerificationLimiter(h *testHarness, maxSends, maxAttempts int) {
	h.engine.verificationLimiter = limiters.NewEmailVerificationLimiter(h.rdb, limiters.EmailVerificationConfig{
		Prefix:      "aas",
		Window:      5 * time.Minute,
		MaxSends:    maxSends,
		MaxAttempts: maxAttempts,
	})
}

func TestSendVerificationCodeRateLimited(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	// The built engine reads the wall clock, so stored ttls must too.
	h.clock.now = time.Now()

	cfg := defaultConfig()
	cfg.Password.BcryptCost = bcrypt.MinCost
	cfg.VerificationCode.HashCost = bcrypt.MinCost
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxCodeSends = 2
	engine, err := New().
		WithConfig(cfg).
		WithRedis(h.rdb).
		WithCredentialStore(h.users).
		WithVerificationCodeStore(h.codes).
		WithMailer(h.mailer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	lastCode := h.mailer.lastCode(t)

	err = engine.SendVerificationCode(ctx, "a@x.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if h.codes.puts != 2 || len(h.mailer.sent) != 2 {
		t.Fatalf("expected nothing stored or mailed, puts=%d mails=%d", h.codes.puts, len(h.mailer.sent))
	}
	if _, err := engine.VerifyEmail(ctx, "a@x.com", lastCode); err != nil {
		t.Fatalf("expected earlier code to stay valid, got %v", err)
	}
}

func TestVerifyEmailRateLimitedAfterWrongCodes(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	withVerificationLimiter(h, 5, 2)
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	code := h.mailer.lastCode(t)

	for i := 0; i < 2; i++ {
		if _, err := h.engine.VerifyEmail(ctx, "a@x.com", "ZZZZZZ"); !errors.Is(err, ErrInvalidVerificationCode) {
			t.Fatalf("attempt %d: expected ErrInvalidVerificationCode, got %v", i, err)
		}
	}

	_, err := h.engine.VerifyEmail(ctx, "a@x.com", code)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !h.codes.has("u1") {
		t.Fatal("expected code to survive a rate-limited attempt")
	}
}

func TestVerifyEmailSuccessResetsAttemptCounter(t *testing.T) {
	h := newTestEngine(t)
	h.users.add(AdminUser{UserID: "u1", Email: "a@x.com"})
	withVerificationLimiter(h, 5, 2)
	ctx := context.Background()

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", "ZZZZZZ"); !errors.Is(err, ErrInvalidVerificationCode) {
		t.Fatalf("expected ErrInvalidVerificationCode, got %v", err)
	}
	if _, err := h.engine.VerifyEmail(ctx, "a@x.com", h.mailer.lastCode(t)); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if h.redis.Exists("aas:ava:u1") {
		t.Fatal("expected attempt counter to be cleared")
	}

	if err := h.engine.SendVerificationCode(ctx, "a@x.com"); err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := h.engine.VerifyEmail(ctx, "a@x.com", "ZZZZZZ"); !errors.Is(err, ErrInvalidVerificationCode) {
			t.Fatalf("attempt %d after reset: expected ErrInvalidVerificationCode, got %v", i, err)
		}
	}
}
