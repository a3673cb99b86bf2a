package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	sharedConfig "github.com/harbinger-games/harbinger/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig      `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig    `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig        `mapstructure:"auth"`
	Redis       sharedConfig.RedisConfig       `mapstructure:"redis"`
	Matchmaking sharedConfig.MatchmakingConfig `mapstructure:"matchmaking"`
	Progression sharedConfig.ProgressionConfig `mapstructure:"progression"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error; defaults and HARBINGER_* variables still apply.
func Load(env string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("HARBINGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	m := c.Matchmaking
	if m.MinPlayersPerMatch < vo.MinPartySize || m.MaxPlayersPerMatch > vo.MaxPartySize || m.MinPlayersPerMatch > m.MaxPlayersPerMatch {
		return fmt.Errorf("matchmaking players per match bounds must lie within [%d, %d]", vo.MinPartySize, vo.MaxPartySize)
	}
	if m.DefaultPlayersPerMatch < m.MinPlayersPerMatch || m.DefaultPlayersPerMatch > m.MaxPlayersPerMatch {
		return fmt.Errorf("matchmaking.default_players_per_match must lie within [%d, %d]", m.MinPlayersPerMatch, m.MaxPlayersPerMatch)
	}
	if m.OrphanGraceSeconds <= 0 {
		return fmt.Errorf("matchmaking.orphan_grace_seconds must be positive")
	}

	if c.Auth.JWT.Secret == "" {
		return fmt.Errorf("auth.jwt.secret is required")
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "harbinger.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "harbinger_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.issuer", "harbinger")
	v.SetDefault("auth.jwt.access_exp_minutes", 60)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Matchmaking defaults
	v.SetDefault("matchmaking.default_players_per_match", vo.DefaultPartySize)
	v.SetDefault("matchmaking.min_players_per_match", vo.MinPartySize)
	v.SetDefault("matchmaking.max_players_per_match", vo.MaxPartySize)
	v.SetDefault("matchmaking.use_transactions", true)
	v.SetDefault("matchmaking.orphan_grace_seconds", 30)
	v.SetDefault("matchmaking.repair_interval_seconds", 60)
	v.SetDefault("matchmaking.sweep_interval_seconds", 15)
	v.SetDefault("matchmaking.enqueue_rate_limit", 30)

	// Progression defaults
	v.SetDefault("progression.xp_per_level", 1000)
	v.SetDefault("progression.max_xp_per_report", 50000)
}
