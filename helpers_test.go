package adminAuth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/adminAuth/password"
	"github.com/MrEthical07/adminAuth/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCredentialStore struct {
	mu    sync.Mutex
	users map[string]AdminUser
	calls int
	err   error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{users: map[string]AdminUser{}}
}

func (s *fakeCredentialStore) add(u AdminUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

func (s *fakeCredentialStore) remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

func (s *fakeCredentialStore) get(userID string) (AdminUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	return u, ok
}

func (s *fakeCredentialStore) matches(email string) []AdminUser {
	var out []AdminUser
	for _, u := range s.users {
		if u.Email == email {
			out = append(out, u)
		}
	}
	return out
}

func (s *fakeCredentialStore) Exists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return len(s.matches(email)) > 0, nil
}

func (s *fakeCredentialStore) FetchByEmail(_ context.Context, email string) (*AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	found := s.matches(email)
	switch len(found) {
	case 0:
		return nil, ErrNonExistentAdminUser
	case 1:
		u := found[0]
		return &u, nil
	default:
		return nil, ErrDuplicateAdminUser
	}
}

func (s *fakeCredentialStore) FetchByID(_ context.Context, userID string) (*AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNonExistentAdminUser
	}
	return &u, nil
}

func (s *fakeCredentialStore) UpdatePassword(_ context.Context, update PasswordUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	u, ok := s.users[update.UserID]
	if !ok {
		return ErrNonExistentAdminUser
	}
	u.PasswordHash = update.PasswordHash
	u.PasswordSalt = update.PasswordSalt
	s.users[update.UserID] = u
	return nil
}

type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[string]VerificationCode
	ttl   time.Duration
	now   func() time.Time
	puts  int
}

func (s *fakeCodeStore) Put(_ context.Context, code VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	code.TTL = s.now().Add(s.ttl).Unix()
	s.codes[code.UserID] = code
	return nil
}

func (s *fakeCodeStore) Fetch(_ context.Context, userID string) (*VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[userID]
	if !ok {
		return nil, ErrNoActiveVerificationCode
	}
	return &code, nil
}

func (s *fakeCodeStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, userID)
	return nil
}

func (s *fakeCodeStore) has(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.codes[userID]
	return ok
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// lastCode extracts the plaintext code from the most recent message.
func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no verification email sent")
	}
	body := m.sent[len(m.sent)-1].body
	idx := strings.LastIndex(body, ": ")
	if idx < 0 {
		t.Fatalf("unexpected email body %q", body)
	}
	return body[idx+2:]
}

type testHarness struct {
	engine   *Engine
	users    *fakeCredentialStore
	codes    *fakeCodeStore
	mailer   *recordingMailer
	sessions *session.Store
	redis    *miniredis.Miniredis
	rdb      *redis.Client
	clock    *fakeClock
}

func newTestEngine(t *testing.T) *testHarness {
	t.Helper()

	mr, rdb := newTestRedis(t)
	cfg := defaultConfig()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	codeHasher, err := password.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}

	h := &testHarness{
		users:    newFakeCredentialStore(),
		codes:    &fakeCodeStore{codes: map[string]VerificationCode{}, ttl: cfg.VerificationCode.TTL, now: clock.Now},
		mailer:   &recordingMailer{},
		sessions: session.NewStore(rdb, cfg.Session.RedisPrefix, cfg.Session.ShortTTL, cfg.Session.LongTTL),
		redis:    mr,
		rdb:      rdb,
		clock:    clock,
	}
	h.engine = &Engine{
		config:       cfg,
		credentials:  h.users,
		codes:        h.codes,
		sessions:     h.sessions,
		mailer:       h.mailer,
		passwordHash: hasher,
		codeHash:     codeHasher,
		policy:       password.Policy{MinLength: cfg.Password.MinLength},
		logger:       zerolog.Nop(),
		now:          clock.Now,
	}
	return h
}

func (h *testHarness) claimedUser(t *testing.T, userID, email, secret string) {
	t.Helper()
	digest, err := h.engine.passwordHash.Hash(context.Background(), secret)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h.users.add(AdminUser{UserID: userID, Email: email, Name: "Admin " + userID, PasswordHash: digest.Hash, PasswordSalt: digest.Salt})
}
