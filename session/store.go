package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/adminAuth/internal"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures from the Redis client.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionCorrupt is returned when a stored value is not a session document.
var ErrSessionCorrupt = errors.New("session corrupt")

// ErrEmptyUserID is returned when a session would be written without a user.
var ErrEmptyUserID = errors.New("session user id empty")

// Store persists sessions in Redis with a short and a long lifetime.
type Store struct {
	redis    redis.UniversalClient
	prefix   string
	shortTTL time.Duration
	longTTL  time.Duration
}

// NewStore creates a session [Store]. prefix sets the key namespace; shortTTL
// applies to Create(short=true) and longTTL to every other write.
func NewStore(redis redis.UniversalClient, prefix string, shortTTL, longTTL time.Duration) *Store {
	return &Store{
		redis:    redis,
		prefix:   prefix,
		shortTTL: shortTTL,
		longTTL:  longTTL,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Create issues a fresh token bound to userID.
//
//	Performance: 1 Redis SET.
func (s *Store) Create(ctx context.Context, userID string, short bool) (*Session, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	token, err := internal.NewSessionToken()
	if err != nil {
		return nil, err
	}

	ttl := s.longTTL
	if short {
		ttl = s.shortTTL
	}

	sess := &Session{SessionID: token, Data: Data{UserID: userID}}
	if err := s.save(ctx, sess, ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

// Update overwrites the data stored at sessionID and resets its lifetime to
// the long TTL. The token itself does not change. A token that no longer
// exists is not recreated: Update returns (nil, nil) instead.
//
//	Performance: 1 Redis SET XX.
func (s *Store) Update(ctx context.Context, sessionID string, data Data) (*Session, error) {
	if data.UserID == "" {
		return nil, ErrEmptyUserID
	}
	if sessionID == "" {
		return nil, nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ok, err := s.redis.SetXX(ctx, s.key(sessionID), payload, s.longTTL).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return nil, nil
	}
	return &Session{SessionID: sessionID, Data: data}, nil
}

// Fetch returns the session stored at sessionID, or (nil, nil) when the token
// is unknown or expired.
//
//	Performance: 1 Redis GET.
func (s *Store) Fetch(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	raw, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	if data.UserID == "" {
		return nil, ErrSessionCorrupt
	}

	return &Session{SessionID: sessionID, Data: data}, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) save(ctx context.Context, sess *Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess.Data)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sess.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
