package appconfig

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	adminAuth "github.com/MrEthical07/adminAuth"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const envPrefix = "ADMINAUTH_"

// Password schemes accepted by PasswordScheme.
const (
	SchemeBcrypt = "bcrypt"
	SchemeArgon2 = "argon2"
	SchemeKMS    = "kms"
)

var stagePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,31}$`)

// Config holds runtime settings for the server and load test binaries.
type Config struct {
	Stage string

	HTTPAddr       string
	AllowedOrigins []string
	RequestTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	AWSRegion        string
	EndpointOverride string
	AccessKeyID      string
	SecretAccessKey  string

	AdminUsersTable        string
	AdminUsersEmailIndex   string
	VerificationCodesTable string

	MailSource string

	PasswordScheme string
	KMSKeyID       string
	BcryptCost     int

	ShortSessionTTL time.Duration
	LongSessionTTL  time.Duration

	RateLimit      bool
	MetricsEnabled bool
	AuditLog       bool

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates development defaults. Stage-derived names are left
// empty and filled in by Load.
func (c *Config) LoadDefaults() {
	engine := adminAuth.DefaultConfig()

	c.Stage = "dev"
	c.HTTPAddr = ":8080"
	c.AllowedOrigins = nil
	c.RequestTimeout = 10 * time.Second
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisDB = 0
	c.AWSRegion = "eu-west-1"
	c.AdminUsersEmailIndex = "email-index"
	c.MailSource = "no-reply@example.com"
	c.PasswordScheme = SchemeBcrypt
	c.BcryptCost = engine.Password.BcryptCost
	c.ShortSessionTTL = engine.Session.ShortTTL
	c.LongSessionTTL = engine.Session.LongTTL
	c.RateLimit = false
	c.MetricsEnabled = true
	c.AuditLog = false
	c.LogLevel = "info"
	c.LogFormat = "json"
}

type binding struct {
	name    string
	usage   string
	set     func(string) error
	boolean bool
}

func (c *Config) bindings() []binding {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = strings.TrimSpace(v); return nil }
	}
	dur := func(dst *time.Duration) func(string) error {
		return func(v string) error {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*dst = d
			return nil
		}
	}
	boolean := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}

	return []binding{
		{"stage", "deployment stage; namespaces tables and redis keys", str(&c.Stage), false},
		{"http-addr", "HTTP listen address", str(&c.HTTPAddr), false},
		{"allowed-origins", "comma separated CORS origins", func(v string) error {
			c.AllowedOrigins = splitList(v)
			return nil
		}, false},
		{"request-timeout", "per-request deadline", dur(&c.RequestTimeout), false},
		{"redis-addr", "redis address", str(&c.RedisAddr), false},
		{"redis-password", "redis password", str(&c.RedisPassword), false},
		{"redis-db", "redis database number", func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			c.RedisDB = n
			return nil
		}, false},
		{"redis-prefix", "session key prefix (default <stage>-aas)", str(&c.RedisPrefix), false},
		{"aws-region", "AWS region", str(&c.AWSRegion), false},
		{"endpoint-override", "send DynamoDB, KMS and SES calls to this endpoint", str(&c.EndpointOverride), false},
		{"access-key-id", "static access key for endpoint-override", str(&c.AccessKeyID), false},
		{"secret-access-key", "static secret key for endpoint-override", str(&c.SecretAccessKey), false},
		{"admin-users-table", "admin users table (default <stage>-admin-users)", str(&c.AdminUsersTable), false},
		{"admin-users-email-index", "email index on the admin users table", str(&c.AdminUsersEmailIndex), false},
		{"verification-codes-table", "verification codes table (default <stage>-admin-user-verification-codes)", str(&c.VerificationCodesTable), false},
		{"mail-source", "verified SES sender address", str(&c.MailSource), false},
		{"password-scheme", "bcrypt, argon2 or kms", str(&c.PasswordScheme), false},
		{"kms-key-id", "KMS key for the kms password scheme", str(&c.KMSKeyID), false},
		{"bcrypt-cost", "bcrypt cost for the bcrypt password scheme", func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			c.BcryptCost = n
			return nil
		}, false},
		{"short-session-ttl", "lifetime of sessions issued by email verification", dur(&c.ShortSessionTTL), false},
		{"long-session-ttl", "lifetime of login and refreshed sessions", dur(&c.LongSessionTTL), false},
		{"rate-limit", "enable redis rate limits", boolean(&c.RateLimit), true},
		{"metrics", "enable in-process metrics and /metrics", boolean(&c.MetricsEnabled), true},
		{"audit-log", "write audit events to the log", boolean(&c.AuditLog), true},
		{"log-level", "debug, info, warn or error", str(&c.LogLevel), false},
		{"log-format", "json or console", str(&c.LogFormat), false},
	}
}

// EnvName returns the environment variable bound to a flag name.
func EnvName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Source supplies the inputs Load reads. Zero values read nothing.
type Source struct {
	Args      []string
	DotEnv    []string
	LookupEnv func(string) (string, bool)
}

// FromProcess reads os.Args, os.LookupEnv and ./.env.
func FromProcess() Source {
	return Source{Args: os.Args[1:], DotEnv: []string{".env"}, LookupEnv: os.LookupEnv}
}

// Load applies every layer over the defaults and validates the result.
func Load(src Source) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	bindings := cfg.bindings()

	fileValues, err := readDotEnv(src.DotEnv)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		if v, ok := fileValues[EnvName(b.name)]; ok {
			if err := b.set(v); err != nil {
				return nil, fmt.Errorf("%s from .env: %w", EnvName(b.name), err)
			}
		}
	}

	if src.LookupEnv != nil {
		for _, b := range bindings {
			if v, ok := src.LookupEnv(EnvName(b.name)); ok {
				if err := b.set(v); err != nil {
					return nil, fmt.Errorf("%s: %w", EnvName(b.name), err)
				}
			}
		}
	}

	fs := flag.NewFlagSet("adminauth", flag.ContinueOnError)
	for _, b := range bindings {
		if b.boolean {
			fs.BoolFunc(b.name, b.usage, b.set)
			continue
		}
		fs.Func(b.name, b.usage, b.set)
	}
	if err := fs.Parse(src.Args); err != nil {
		return nil, err
	}

	cfg.deriveStageNames()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readDotEnv(files []string) (map[string]string, error) {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(present...)
	if err != nil {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return values, nil
}

func (c *Config) deriveStageNames() {
	if c.RedisPrefix == "" {
		c.RedisPrefix = c.Stage + "-aas"
	}
	if c.AdminUsersTable == "" {
		c.AdminUsersTable = c.Stage + "-admin-users"
	}
	if c.VerificationCodesTable == "" {
		c.VerificationCodesTable = c.Stage + "-admin-user-verification-codes"
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Stage, validation.Required, validation.Match(stagePattern)),
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.RedisAddr, validation.Required),
		validation.Field(&c.RedisDB, validation.Min(0)),
		validation.Field(&c.AWSRegion, validation.Required),
		validation.Field(&c.EndpointOverride, is.URL),
		validation.Field(&c.AdminUsersTable, validation.Required),
		validation.Field(&c.AdminUsersEmailIndex, validation.Required),
		validation.Field(&c.VerificationCodesTable, validation.Required),
		validation.Field(&c.MailSource, validation.Required, is.EmailFormat),
		validation.Field(&c.PasswordScheme, validation.Required, validation.In(SchemeBcrypt, SchemeArgon2, SchemeKMS)),
		validation.Field(&c.KMSKeyID, validation.When(c.PasswordScheme == SchemeKMS, validation.Required)),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.ShortSessionTTL, validation.Required, validation.Max(c.LongSessionTTL)),
		validation.Field(&c.LongSessionTTL, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("json", "console")),
	)
}

// EngineConfig maps the process settings onto the engine configuration.
func (c *Config) EngineConfig() adminAuth.Config {
	cfg := adminAuth.DefaultConfig()
	cfg.Session.RedisPrefix = c.RedisPrefix
	cfg.Session.ShortTTL = c.ShortSessionTTL
	cfg.Session.LongTTL = c.LongSessionTTL
	cfg.Password.BcryptCost = c.BcryptCost
	cfg.RateLimit.Enabled = c.RateLimit
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.MetricsEnabled
	cfg.Audit.Enabled = c.AuditLog
	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
