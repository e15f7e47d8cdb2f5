package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Storage            string        `mapstructure:"storage"` // memory, sqlite, postgres or redis
	SQLitePath         string        `mapstructure:"sqlite_path"`
	QuotaBytes         int           `mapstructure:"quota_bytes"`
	ChatHistoryLimit   int           `mapstructure:"chat_history_limit"`
	ChatReplyDelay     time.Duration `mapstructure:"chat_reply_delay"`
	DraftAutosaveDelay time.Duration `mapstructure:"draft_autosave_delay"`
	Debug              bool          `mapstructure:"debug"`
	DB                 DBConfig      `mapstructure:"db"`
	Redis              RedisConfig   `mapstructure:"redis"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage", "sqlite")
	v.SetDefault("sqlite_path", "roseforum.db")
	v.SetDefault("quota_bytes", 5<<20)
	v.SetDefault("chat_history_limit", 50)
	v.SetDefault("chat_reply_delay", 2*time.Second)
	v.SetDefault("draft_autosave_delay", 5*time.Second)
	v.SetDefault("debug", false)
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "roseforum:")
}

// Load reads .env, an optional roseforum.yaml and ROSE_* variables.
// Postgres settings keep the plain DB_* names.
func Load() (Config, error) {
	LoadEnv()

	v := viper.New()
	v.SetConfigName("roseforum")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("ROSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"db.host":        "DB_HOST",
		"db.user":        "DB_USER",
		"db.password":    "DB_PASSWORD",
		"db.name":        "DB_NAME",
		"db.port":        "DB_PORT",
		"db.sslmode":     "DB_SSLMODE",
		"redis.addr":     "REDIS_ADDR",
		"redis.password": "REDIS_PASSWORD",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.ChatHistoryLimit <= 0 {
		return errors.New("chat_history_limit must be positive")
	}
	if c.QuotaBytes < 0 {
		return errors.New("quota_bytes must not be negative")
	}
	return nil
}

// PostgresDSN builds the connection string from the DB_* settings.
func (c *Config) PostgresDSN() (string, error) {
	missing := make([]string, 0)
	for _, setting := range []struct {
		name, value string
	}{
		{"DB_HOST", c.DB.Host},
		{"DB_USER", c.DB.User},
		{"DB_NAME", c.DB.Name},
	} {
		if setting.value == "" {
			missing = append(missing, setting.name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variables not set: %s", strings.Join(missing, ", "))
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port, c.DB.SSLMode,
	), nil
}
