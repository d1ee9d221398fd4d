package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Gateway   GatewaySettings   `mapstructure:"gateway"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Cache     CacheSettings     `mapstructure:"cache"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// GatewaySettings configures the edge proxy: listen address plus the
// upstream service targets the routing table forwards to.
type GatewaySettings struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	AuthServiceURL string `mapstructure:"auth_service_url"`
	PostServiceURL string `mapstructure:"post_service_url"`
}

type PostgresSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisSettings configures the shared state store connection.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the event producer. An empty broker list selects
// the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

type JWTSettings struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// RateLimitSettings configures the two admission strategies: the global
// per-identity point budget and the longer sensitive-route window.
type RateLimitSettings struct {
	KeyPrefix            string        `mapstructure:"key_prefix"`
	GlobalPoints         int64         `mapstructure:"global_points"`
	GlobalWindow         time.Duration `mapstructure:"global_window"`
	SensitiveMaxAttempts int64         `mapstructure:"sensitive_max_attempts"`
	SensitiveWindow      time.Duration `mapstructure:"sensitive_window"`
}

// CacheSettings configures the read-through listing cache.
type CacheSettings struct {
	KeyPrefix string        `mapstructure:"key_prefix"`
	PageTTL   time.Duration `mapstructure:"page_ttl"`
	ItemTTL   time.Duration `mapstructure:"item_ttl"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("GATEWAY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"gateway.host",
		"gateway.port",
		"gateway.auth_service_url",
		"gateway.post_service_url",
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
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"jwt.secret",
		"jwt.issuer",
		"jwt.access_token_ttl",
		"jwt.refresh_token_ttl",
		"rate_limit.key_prefix",
		"rate_limit.global_points",
		"rate_limit.global_window",
		"rate_limit.sensitive_max_attempts",
		"rate_limit.sensitive_window",
		"cache.key_prefix",
		"cache.page_ttl",
		"cache.item_ttl",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("jwt secret is required in production")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "social-platform")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 3001)

	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 3000)
	v.SetDefault("gateway.auth_service_url", "http://localhost:3001")
	v.SetDefault("gateway.post_service_url", "http://localhost:3001")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "social")
	v.SetDefault("postgres.password", "social_password")
	v.SetDefault("postgres.database", "social")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "social")

	v.SetDefault("jwt.secret", "dev-only-secret")
	v.SetDefault("jwt.issuer", "social-platform")
	v.SetDefault("jwt.access_token_ttl", "10m")
	v.SetDefault("jwt.refresh_token_ttl", "168h")

	// Global budget: 100 points per 1-second fixed window.
	// Sensitive routes: 100 attempts per 15 minutes, keyed by client IP.
	v.SetDefault("rate_limit.key_prefix", "ratelimit")
	v.SetDefault("rate_limit.global_points", 100)
	v.SetDefault("rate_limit.global_window", "1s")
	v.SetDefault("rate_limit.sensitive_max_attempts", 100)
	v.SetDefault("rate_limit.sensitive_window", "15m")

	v.SetDefault("cache.key_prefix", "content")
	v.SetDefault("cache.page_ttl", "300s")
	v.SetDefault("cache.item_ttl", "3600s")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "GATEWAY_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
