package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is the root configuration for the portal auth service.
type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Catalog  CatalogSettings  `mapstructure:"catalog"`
	Storage  StorageSettings  `mapstructure:"storage"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
	Security SecuritySettings `mapstructure:"security"`
	OTP      OTPSettings      `mapstructure:"otp"`
	Session  SessionSettings  `mapstructure:"session"`
	Audit    AuditSettings    `mapstructure:"audit"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// CatalogSettings selects the credential catalog source.
// Source is "file" or "postgres".
type CatalogSettings struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

// StorageSettings selects the key-value persistence medium.
// Backend is "memory" or "redis".
type StorageSettings struct {
	Backend string `mapstructure:"backend"`
}

type PostgresSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders the Postgres connection string.
func (p PostgresSettings) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

type RedisSettings struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	DB        int    `mapstructure:"db"`
	Password  string `mapstructure:"password"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Addr renders the host:port address for the Redis client.
func (r RedisSettings) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// SecuritySettings configures hashing and session token signing.
// HashAlgo is "sha256" (catalog compatible) or "argon2id".
type SecuritySettings struct {
	HashAlgo        string        `mapstructure:"hash_algo"`
	TokenSecret     string        `mapstructure:"token_secret"`
	SessionTokenTTL time.Duration `mapstructure:"session_token_ttl"`
}

type OTPSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// SessionSettings carries the explicit session TTL decision: zero means
// sessions never expire, matching the historical behaviour.
type SessionSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type AuditSettings struct {
	Capacity int `mapstructure:"capacity"`
}

// Load reads configuration from the environment with PORTAL_ prefixed keys.
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("PORTAL")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"catalog.source",
		"catalog.path",
		"storage.backend",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"security.hash_algo",
		"security.token_secret",
		"security.session_token_ttl",
		"otp.ttl",
		"session.ttl",
		"audit.capacity",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "portal-auth")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.path", "./data/users.json")

	v.SetDefault("storage.backend", "memory")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "portal")
	v.SetDefault("postgres.password", "portal_password")
	v.SetDefault("postgres.database", "portal")
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.key_prefix", "portal")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "portal")

	v.SetDefault("security.hash_algo", "sha256")
	v.SetDefault("security.token_secret", "")
	v.SetDefault("security.session_token_ttl", "0")

	v.SetDefault("otp.ttl", "10m")

	// Sessions historically never expire; a TTL must be opted into.
	v.SetDefault("session.ttl", "0")

	v.SetDefault("audit.capacity", 500)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "PORTAL_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
