// Command adminauth-server serves the admin-user authentication API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/MrEthical07/adminAuth/dynamo"
	"github.com/MrEthical07/adminAuth/internal/appconfig"
	"github.com/MrEthical07/adminAuth/internal/awsclient"
	"github.com/MrEthical07/adminAuth/internal/httpapi"
	"github.com/MrEthical07/adminAuth/mail"
	"github.com/MrEthical07/adminAuth/metrics/export/prometheus"
	"github.com/MrEthical07/adminAuth/password"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := appconfig.Load(appconfig.FromProcess())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *appconfig.Config, logger zerolog.Logger) error {
	clients, err := awsclient.New(ctx, awsclient.Options{
		Region:           cfg.AWSRegion,
		EndpointOverride: cfg.EndpointOverride,
		AccessKeyID:      cfg.AccessKeyID,
		SecretAccessKey:  cfg.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("aws: %w", err)
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.RedisAddr},
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	mailer, err := mail.NewSES(clients.SES, cfg.MailSource)
	if err != nil {
		return err
	}
	engineCfg := cfg.EngineConfig()
	hasher, err := newHasher(cfg, engineCfg.Password, clients)
	if err != nil {
		return err
	}

	builder := adminAuth.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithCredentialStore(dynamo.NewAdminUserStore(clients.DynamoDB, cfg.AdminUsersTable, cfg.AdminUsersEmailIndex)).
		WithVerificationCodeStore(dynamo.NewVerificationCodeStore(clients.DynamoDB, cfg.VerificationCodesTable, engineCfg.VerificationCode.TTL)).
		WithMailer(mailer).
		WithPasswordHasher(hasher).
		WithLogger(logger)
	if cfg.AuditLog {
		builder = builder.WithAuditSink(adminAuth.NewZerologSink(logger))
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer engine.Close()

	opts := httpapi.Options{
		Engine:         engine,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}
	if cfg.MetricsEnabled {
		opts.Metrics = prometheus.NewPrometheusExporter(engine).Handler()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddr).
			Str("admin_users_table", cfg.AdminUsersTable).
			Str("password_scheme", cfg.PasswordScheme).
			Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHasher(cfg *appconfig.Config, policy adminAuth.PasswordConfig, clients *awsclient.Clients) (password.Hasher, error) {
	switch cfg.PasswordScheme {
	case appconfig.SchemeKMS:
		return password.NewKMS(clients.KMS, cfg.KMSKeyID)
	case appconfig.SchemeArgon2:
		return password.NewArgon2(password.Argon2Params{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		})
	default:
		return password.NewBcrypt(policy.BcryptCost)
	}
}
