package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Session   SessionSettings   `mapstructure:"session"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Audit     AuditSettings     `mapstructure:"audit"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the shared key-value store used for sessions and
// rate-limit buckets when the service runs with more than one instance. An
// empty host selects the in-memory stores instead.
type RedisSettings struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	DB              int    `mapstructure:"db"`
	Password        string `mapstructure:"password"`
	TLSEnabled      bool   `mapstructure:"tls_enabled"`
	SessionPrefix   string `mapstructure:"session_prefix"`
	RateLimitPrefix string `mapstructure:"rate_limit_prefix"`
}

// KafkaSettings configures the admin event publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AuthSettings configures bearer-credential verification.
type AuthSettings struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	Audience       string        `mapstructure:"audience"`
	ClockSkew      time.Duration `mapstructure:"clock_skew"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
}

// SessionSettings configures administrator session lifetimes.
type SessionSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
	// InactiveRetention controls how long invalidated sessions remain
	// queryable by id before the sweep removes them.
	InactiveRetention time.Duration `mapstructure:"inactive_retention"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitSettings configures fixed windows and limits for sensitive admin
// actions.
type RateLimitSettings struct {
	WindowDuration    time.Duration `mapstructure:"window_duration"`
	ApproveJoinMax    int           `mapstructure:"approve_join_max"`
	DeactivateUserMax int           `mapstructure:"deactivate_user_max"`
	BroadcastMax      int           `mapstructure:"broadcast_max"`
	LoginMaxAttempts  int           `mapstructure:"login_max_attempts"`
}

// AuditSettings configures the asynchronous audit writer.
type AuditSettings struct {
	QueueSize    int           `mapstructure:"queue_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SOCIETY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.session_prefix",
		"redis.rate_limit_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"auth.jwt_secret",
		"auth.issuer",
		"auth.audience",
		"auth.clock_skew",
		"auth.resolve_timeout",
		"session.ttl",
		"session.inactive_retention",
		"session.sweep_interval",
		"rate_limit.window_duration",
		"rate_limit.approve_join_max",
		"rate_limit.deactivate_user_max",
		"rate_limit.broadcast_max",
		"rate_limit.login_max_attempts",
		"audit.queue_size",
		"audit.write_timeout",
		"audit.drain_timeout",
	}); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "society-admin")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "society")
	v.SetDefault("postgres.database", "society")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", time.Hour)
	v.SetDefault("postgres.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("postgres.health_check_period", time.Minute)

	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.session_prefix", "society:admin:session")
	v.SetDefault("redis.rate_limit_prefix", "society:admin:rate-limit")

	v.SetDefault("kafka.topic_prefix", "society.admin")

	v.SetDefault("auth.issuer", "society-identity")
	v.SetDefault("auth.audience", "society-admin")
	v.SetDefault("auth.clock_skew", 30*time.Second)
	v.SetDefault("auth.resolve_timeout", 5*time.Second)

	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.inactive_retention", time.Hour)
	v.SetDefault("session.sweep_interval", 5*time.Minute)

	v.SetDefault("rate_limit.window_duration", time.Minute)
	v.SetDefault("rate_limit.approve_join_max", 30)
	v.SetDefault("rate_limit.deactivate_user_max", 10)
	v.SetDefault("rate_limit.broadcast_max", 5)
	v.SetDefault("rate_limit.login_max_attempts", 10)

	v.SetDefault("audit.queue_size", 256)
	v.SetDefault("audit.write_timeout", 5*time.Second)
	v.SetDefault("audit.drain_timeout", 10*time.Second)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func (c *AppConfig) validate() error {
	if c.App.Port <= 0 {
		return fmt.Errorf("app.port must be positive")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" && c.App.Env == "production" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	if c.Audit.QueueSize <= 0 {
		return fmt.Errorf("audit.queue_size must be positive")
	}
	return nil
}
