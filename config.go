package adminAuth

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds engine policy. It is cloned on Build and treated as immutable
// afterwards.
type Config struct {
	Session          SessionConfig
	VerificationCode VerificationCodeConfig
	Password         PasswordConfig
	RateLimit        RateLimitConfig
	Audit            AuditConfig
	Metrics          MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session key layout and lifetimes. ShortTTL applies
// to sessions issued after email verification, LongTTL to login sessions and
// to every Update.
type SessionConfig struct {
	RedisPrefix string
	ShortTTL    time.Duration
	LongTTL     time.Duration
}

/*
====================================
VERIFICATION CODE CONFIG
====================================
*/

// VerificationCodeConfig controls the one-time email code.
type VerificationCodeConfig struct {
	TTL          time.Duration
	CodeBytes    int
	HashCost     int
	EmailSubject string
	// EmailBody is a format string receiving the plaintext code.
	EmailBody string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures the default bcrypt hasher and the strength policy.
// It is ignored for hashing when a hasher is supplied through the Builder.
type PasswordConfig struct {
	MinLength  int
	BcryptCost int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig enables Redis fixed-window limits on code delivery, code
// redemption and login failures. All limits are off by default.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxCodeSends     int
	MaxCodeAttempts  int
	CodeWindow       time.Duration
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the production defaults: 5 minute short sessions,
// 30 minute long sessions, 5 minute six character codes hashed with bcrypt
// cost 10.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "aas",
			ShortTTL:    5 * time.Minute,
			LongTTL:     30 * time.Minute,
		},
		VerificationCode: VerificationCodeConfig{
			TTL:          5 * time.Minute,
			CodeBytes:    3,
			HashCost:     bcrypt.DefaultCost,
			EmailSubject: "Admin Verification Code",
			EmailBody:    "Your verification code is: %s",
		},
		Password: PasswordConfig{
			MinLength:  8,
			BcryptCost: bcrypt.DefaultCost,
		},
		RateLimit: RateLimitConfig{
			Enabled:          false,
			EnableIPThrottle: false,
			MaxCodeSends:     5,
			MaxCodeAttempts:  5,
			CodeWindow:       5 * time.Minute,
			MaxLoginAttempts: 5,
			LoginCooldown:    15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session RedisPrefix must be set")
	}
	if c.Session.ShortTTL <= 0 {
		return errors.New("Session ShortTTL must be > 0")
	}
	if c.Session.LongTTL <= 0 {
		return errors.New("Session LongTTL must be > 0")
	}
	if c.Session.ShortTTL > c.Session.LongTTL {
		return errors.New("Session ShortTTL must not exceed LongTTL")
	}

	if c.VerificationCode.TTL < time.Second {
		return errors.New("VerificationCode TTL must be >= 1s")
	}
	if c.VerificationCode.CodeBytes < 3 || c.VerificationCode.CodeBytes > 8 {
		return errors.New("VerificationCode CodeBytes must be in [3,8]")
	}
	if c.VerificationCode.HashCost < bcrypt.MinCost || c.VerificationCode.HashCost > bcrypt.MaxCost {
		return errors.New("VerificationCode HashCost out of bcrypt range")
	}
	if !strings.Contains(c.VerificationCode.EmailBody, "%s") {
		return errors.New("VerificationCode EmailBody must contain %s")
	}

	if c.Password.MinLength < 8 {
		return errors.New("Password MinLength must be >= 8")
	}
	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		return errors.New("Password BcryptCost out of bcrypt range")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.MaxCodeSends <= 0 || c.RateLimit.MaxCodeAttempts <= 0 {
			return errors.New("RateLimit code limits must be > 0")
		}
		if c.RateLimit.CodeWindow <= 0 {
			return errors.New("RateLimit CodeWindow must be > 0")
		}
		if c.RateLimit.MaxLoginAttempts <= 0 || c.RateLimit.LoginCooldown <= 0 {
			return errors.New("RateLimit login limits must be > 0")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
