package adminAuth

import (
	"errors"
	"time"

	"github.com/MrEthical07/adminAuth/internal/limiters"
	"github.com/MrEthical07/adminAuth/internal/rate"
	"github.com/MrEthical07/adminAuth/password"
	"github.com/MrEthical07/adminAuth/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles an Engine from its collaborators. A Builder can be used
// for a single Build.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	credentials CredentialStore
	codes       VerificationCodeStore
	sessions    SessionStore
	mailer      Mailer
	hasher      password.Hasher
	auditSink   AuditSink
	logger      *zerolog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the default session store
// and the rate limiters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore replaces the Redis session store.
func (b *Builder) WithSessionStore(store SessionStore) *Builder {
	b.sessions = store
	return b
}

func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.credentials = store
	return b
}

func (b *Builder) WithVerificationCodeStore(store VerificationCodeStore) *Builder {
	b.codes = store
	return b
}

func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithPasswordHasher replaces the default bcrypt password hasher, for
// example with password.NewKMS or password.NewArgon2.
func (b *Builder) WithPasswordHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.credentials == nil {
		return nil, errors.New("credential store required")
	}
	if b.codes == nil {
		return nil, errors.New("verification code store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	// -------- SESSION STORE --------
	sessions := b.sessions
	if sessions == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or session store required")
		}
		sessions = session.NewStore(
			b.redis,
			cfg.Session.RedisPrefix,
			cfg.Session.ShortTTL,
			cfg.Session.LongTTL,
		)
	}

	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("RateLimit requires redis client")
	}

	// -------- HASHERS --------
	hasher := b.hasher
	if hasher == nil {
		bc, err := password.NewBcrypt(cfg.Password.BcryptCost)
		if err != nil {
			return nil, err
		}
		hasher = bc
	}
	codeHasher, err := password.NewBcrypt(cfg.VerificationCode.HashCost)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}

	engine := &Engine{
		config:       cloneConfig(cfg),
		credentials:  b.credentials,
		codes:        b.codes,
		sessions:     sessions,
		mailer:       b.mailer,
		passwordHash: hasher,
		codeHash:     codeHasher,
		policy:       password.Policy{MinLength: cfg.Password.MinLength},
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink, logger),
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger.With().Str("component", "adminauth").Logger(),
		now:          time.Now,
	}

	// -------- RATE LIMITERS --------
	if cfg.RateLimit.Enabled {
		engine.loginLimiter = rate.New(b.redis, rate.Config{
			Prefix:                cfg.Session.RedisPrefix,
			EnableIPThrottle:      cfg.RateLimit.EnableIPThrottle,
			MaxLoginAttempts:      cfg.RateLimit.MaxLoginAttempts,
			LoginCooldownDuration: cfg.RateLimit.LoginCooldown,
		})
		engine.verificationLimiter = limiters.NewEmailVerificationLimiter(b.redis, limiters.EmailVerificationConfig{
			Prefix:           cfg.Session.RedisPrefix,
			EnableIPThrottle: cfg.RateLimit.EnableIPThrottle,
			Window:           cfg.RateLimit.CodeWindow,
			MaxSends:         cfg.RateLimit.MaxCodeSends,
			MaxAttempts:      cfg.RateLimit.MaxCodeAttempts,
		})
	}

	b.built = true

	return engine, nil
}
