package adminAuth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/adminAuth/internal/limiters"
	"github.com/MrEthical07/adminAuth/internal/rate"
	"github.com/MrEthical07/adminAuth/password"
	"github.com/rs/zerolog"
)

// Engine orchestrates the admin verification, login and password flows.
//
// An Engine is built once per process with [Builder.Build] and is safe for
// concurrent use afterwards. It holds no per-request state besides atomic
// metrics and the audit queue.
type Engine struct {
	config              Config
	credentials         CredentialStore
	codes               VerificationCodeStore
	sessions            SessionStore
	mailer              Mailer
	passwordHash        password.Hasher
	codeHash            password.Hasher
	policy              password.Policy
	loginLimiter        *rate.Limiter
	verificationLimiter *limiters.EmailVerificationLimiter
	audit               *auditDispatcher
	metrics             *Metrics
	logger              zerolog.Logger
	now                 func() time.Time
}

// Close drains the audit queue. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// queue was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

type pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Ping checks the session backend and reports its round-trip latency. Session
// stores without a Ping method are reported healthy with zero latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	p, ok := e.sessions.(pinger)
	if !ok {
		return 0, nil
	}
	return p.Ping(ctx)
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return defaultConfig()
	}
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) ready() error {
	if e == nil || e.credentials == nil || e.codes == nil || e.sessions == nil ||
		e.mailer == nil || e.passwordHash == nil || e.codeHash == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// userByEmail wraps FetchByEmail so duplicate records are always reported.
func (e *Engine) userByEmail(ctx context.Context, email string) (*AdminUser, error) {
	user, err := e.credentials.FetchByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrDuplicateAdminUser) {
			e.logger.Error().Err(err).Str("email", email).Msg("multiple admin users share one email")
			e.metricInc(MetricIntegrityFault)
			e.emitAudit(ctx, auditEventIntegrityFault, false, "", err, nil)
		}
		return nil, err
	}
	return user, nil
}

// limited converts limiter rejections into ErrRateLimited and passes other
// limiter faults through.
func (e *Engine) limited(ctx context.Context, scope, userID string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) || errors.Is(err, limiters.ErrVerificationRateLimited) {
		e.emitRateLimit(ctx, scope, userID)
		return ErrRateLimited
	}
	e.logger.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
	return err
}
