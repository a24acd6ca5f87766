package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrVerificationRateLimited        = errors.New("verification rate limited")
	ErrVerificationLimiterUnavailable = errors.New("verification limiter unavailable")
)

type EmailVerificationConfig struct {
	Prefix           string
	EnableIPThrottle bool
	Window           time.Duration
	MaxSends         int
	MaxAttempts      int
}

// EmailVerificationLimiter throttles code delivery and code redemption per
// user, and optionally per client IP.
type EmailVerificationLimiter struct {
	redis  redis.UniversalClient
	config EmailVerificationConfig
}

func NewEmailVerificationLimiter(redisClient redis.UniversalClient, cfg EmailVerificationConfig) *EmailVerificationLimiter {
	return &EmailVerificationLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckSend counts one code delivery for userID.
func (l *EmailVerificationLimiter) CheckSend(ctx context.Context, userID, ip string) error {
	if l == nil {
		return nil
	}
	if err := l.enforceFixedWindow(ctx, l.sendUserKey(userID), l.config.MaxSends); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, l.sendIPKey(ip), l.config.MaxSends); err != nil {
			return err
		}
	}
	return nil
}

// CheckAttempt counts one redemption attempt for userID.
func (l *EmailVerificationLimiter) CheckAttempt(ctx context.Context, userID, ip string) error {
	if l == nil {
		return nil
	}
	if err := l.enforceFixedWindow(ctx, l.attemptUserKey(userID), l.config.MaxAttempts); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, l.attemptIPKey(ip), l.config.MaxAttempts); err != nil {
			return err
		}
	}
	return nil
}

// ResetAttempts clears the redemption counter once a code was accepted.
func (l *EmailVerificationLimiter) ResetAttempts(ctx context.Context, userID string) error {
	if l == nil {
		return nil
	}
	if err := l.redis.Del(ctx, l.attemptUserKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationLimiterUnavailable, err)
	}
	return nil
}

func (l *EmailVerificationLimiter) enforceFixedWindow(ctx context.Context, key string, max int) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrVerificationLimiterUnavailable, err)
		}
	}

	if count > int64(max) {
		return ErrVerificationRateLimited
	}

	return nil
}

func (l *EmailVerificationLimiter) sendUserKey(userID string) string {
	return l.config.Prefix + ":avs:" + userID
}

func (l *EmailVerificationLimiter) sendIPKey(ip string) string {
	return l.config.Prefix + ":avsip:" + ip
}

func (l *EmailVerificationLimiter) attemptUserKey(userID string) string {
	return l.config.Prefix + ":ava:" + userID
}

func (l *EmailVerificationLimiter) attemptIPKey(ip string) string {
	return l.config.Prefix + ":avaip:" + ip
}
