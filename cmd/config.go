package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the process configuration. Values come from an optional TOML
// file, then from the environment (a .env file included), and finally from
// defaults for whatever is still empty.
type Config struct {
	AppEnv   string `toml:"app_env"`
	Timezone string `toml:"timezone"`
	HTTPPort string `toml:"http_port"`

	DBHost     string `toml:"db_host"`
	DBPort     string `toml:"db_port"`
	DBUser     string `toml:"db_user"`
	DBPassword string `toml:"db_password"`
	DBName     string `toml:"db_name"`
	DBSslMode  string `toml:"db_sslmode"`

	JWTSecret string `toml:"jwt_secret"`

	AdvisorURL     string        `toml:"advisor_url"`
	AdvisorTimeout time.Duration `toml:"advisor_timeout"`

	RedisAddr       string        `toml:"redis_addr"`
	RedisPassword   string        `toml:"redis_password"`
	RankingCacheTTL time.Duration `toml:"ranking_cache_ttl"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	RateLimitRPS   float64  `toml:"rate_limit_rps"`
	RateLimitBurst int      `toml:"rate_limit_burst"`
	CORSOrigins    []string `toml:"cors_origins"`

	ReconcileSchedule string        `toml:"reconcile_schedule"`
	ReconcileGrace    time.Duration `toml:"reconcile_grace"`
	ReconcileApply    bool          `toml:"reconcile_apply"`
	ExpireSchedule    string        `toml:"expire_schedule"`
}

// LoadConfig reads tomlPath (skipped when missing), then .env and the
// process environment. Environment values win over the file.
func LoadConfig(tomlPath string) (Config, error) {
	var cfg Config

	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", tomlPath, err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load(".env")

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("APP_ENV", &c.AppEnv)
	str("APP_TIMEZONE", &c.Timezone)
	str("HTTP_PORT", &c.HTTPPort)
	str("DB_HOST", &c.DBHost)
	str("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_SSLMODE", &c.DBSslMode)
	str("JWT_SECRET", &c.JWTSecret)
	str("ADVISOR_URL", &c.AdvisorURL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("MONGO_URI", &c.MongoURI)
	str("MONGO_DATABASE", &c.MongoDatabase)
	str("RECONCILE_SCHEDULE", &c.ReconcileSchedule)
	str("EXPIRE_SCHEDULE", &c.ExpireSchedule)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = c.CORSOrigins[:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}

	var errList []error
	parse := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errList = append(errList, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	duration := func(dst *time.Duration) func(string) error {
		return func(v string) (err error) {
			*dst, err = time.ParseDuration(v)
			return err
		}
	}

	parse("ADVISOR_TIMEOUT", duration(&c.AdvisorTimeout))
	parse("RANKING_CACHE_TTL", duration(&c.RankingCacheTTL))
	parse("RECONCILE_GRACE", duration(&c.ReconcileGrace))
	parse("RATE_LIMIT_RPS", func(v string) (err error) {
		c.RateLimitRPS, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("RATE_LIMIT_BURST", func(v string) (err error) {
		c.RateLimitBurst, err = strconv.Atoi(v)
		return err
	})
	parse("RECONCILE_APPLY", func(v string) (err error) {
		c.ReconcileApply, err = strconv.ParseBool(v)
		return err
	})

	return errors.Join(errList...)
}

func (c *Config) applyDefaults() {
	setDefault(&c.AppEnv, "development")
	setDefault(&c.Timezone, "UTC")
	setDefault(&c.HTTPPort, "8080")
	setDefault(&c.DBPort, "5432")
	setDefault(&c.DBSslMode, "disable")
	setDefault(&c.MongoDatabase, "optideliver")

	if c.AdvisorTimeout <= 0 {
		c.AdvisorTimeout = 2 * time.Second
	}
	if c.RankingCacheTTL == 0 {
		c.RankingCacheTTL = 5 * time.Minute
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 5
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 10
	}
	if c.ReconcileGrace <= 0 {
		c.ReconcileGrace = 2 * time.Minute
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

func setDefault(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// Validate reports every missing or malformed required value at once.
func (c Config) Validate() error {
	var errList []error

	if c.DBHost == "" {
		errList = append(errList, errors.New("DB_HOST is required"))
	}
	if c.DBName == "" {
		errList = append(errList, errors.New("DB_NAME is required"))
	}
	if c.JWTSecret == "" {
		errList = append(errList, errors.New("JWT_SECRET is required"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errList = append(errList, fmt.Errorf("APP_TIMEZONE: %w", err))
	}
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		errList = append(errList, fmt.Errorf("HTTP_PORT: %w", err))
	}

	return errors.Join(errList...)
}

// Location is the reference timezone for calendar days.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN is the PostgreSQL connection string shared by gorm and goose.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
