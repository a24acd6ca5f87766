package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	adminAuth "github.com/MrEthical07/adminAuth"
)

// Users is an in-memory adminAuth.CredentialStore keyed by user id.
type Users struct {
	mu    sync.RWMutex
	users map[string]adminAuth.AdminUser
}

var _ adminAuth.CredentialStore = (*Users)(nil)

func NewUsers() *Users {
	return &Users{users: map[string]adminAuth.AdminUser{}}
}

// Add inserts or replaces a record.
func (s *Users) Add(u adminAuth.AdminUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

// Get returns a copy of the record for userID.
func (s *Users) Get(userID string) (adminAuth.AdminUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	return u, ok
}

func (s *Users) byEmail(email string) []adminAuth.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []adminAuth.AdminUser
	for _, u := range s.users {
		if u.Email == email {
			out = append(out, u)
		}
	}
	return out
}

func (s *Users) Exists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return len(s.byEmail(email)) > 0, nil
}

func (s *Users) FetchByEmail(ctx context.Context, email string) (*adminAuth.AdminUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := s.byEmail(email)
	switch len(matches) {
	case 0:
		return nil, adminAuth.ErrNonExistentAdminUser
	case 1:
		u := matches[0]
		return &u, nil
	default:
		return nil, fmt.Errorf("%w: %s", adminAuth.ErrDuplicateAdminUser, email)
	}
}

func (s *Users) FetchByID(ctx context.Context, userID string) (*adminAuth.AdminUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, ok := s.Get(userID)
	if !ok {
		return nil, adminAuth.ErrNonExistentAdminUser
	}
	return &u, nil
}

func (s *Users) UpdatePassword(ctx context.Context, update adminAuth.PasswordUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[update.UserID]
	if !ok {
		return adminAuth.ErrNonExistentAdminUser
	}
	u.PasswordHash = update.PasswordHash
	u.PasswordSalt = update.PasswordSalt
	s.users[update.UserID] = u
	return nil
}

// Codes is an in-memory adminAuth.VerificationCodeStore. Expired codes are
// kept until deleted, matching a table whose TTL sweep has not run yet.
type Codes struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	codes map[string]adminAuth.VerificationCode
}

var _ adminAuth.VerificationCodeStore = (*Codes)(nil)

// NewCodes stamps each stored code with now()+ttl. A nil now uses time.Now.
func NewCodes(ttl time.Duration, now func() time.Time) *Codes {
	if now == nil {
		now = time.Now
	}
	return &Codes{ttl: ttl, now: now, codes: map[string]adminAuth.VerificationCode{}}
}

func (s *Codes) Put(ctx context.Context, code adminAuth.VerificationCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code.TTL = s.now().Add(s.ttl).Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.UserID] = code
	return nil
}

func (s *Codes) Fetch(ctx context.Context, userID string) (*adminAuth.VerificationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[userID]
	if !ok {
		return nil, adminAuth.ErrNoActiveVerificationCode
	}
	return &code, nil
}

func (s *Codes) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, userID)
	return nil
}

// Message is one delivered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Outbox is an adminAuth.Mailer that records messages instead of sending them.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

var _ adminAuth.Mailer = (*Outbox)(nil)

func NewOutbox() *Outbox {
	return &Outbox{}
}

// FailWith makes subsequent sends return err. Pass nil to recover.
func (o *Outbox) FailWith(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *Outbox) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.messages = append(o.messages, Message{To: to, Subject: subject, Body: body})
	return nil
}

// Last returns the most recent message sent to address.
func (o *Outbox) Last(address string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].To == address {
			return o.messages[i], true
		}
	}
	return Message{}, false
}

// LastCode extracts the code from the most recent message to address. The
// code is the final space-separated token of the body.
func (o *Outbox) LastCode(address string) (string, bool) {
	msg, ok := o.Last(address)
	if !ok {
		return "", false
	}
	fields := strings.Fields(msg.Body)
	if len(fields) == 0 {
		return "", false
	}
	return fields[len(fields)-1], true
}
