package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDebug reports whether the server runs in a development mode.
func (s *ServerConfig) IsDebug() bool {
	return s.Mode == "debug" || s.Mode == "development"
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the MySQL DSN. For sqlite the file path is used directly.
func (d *DatabaseConfig) GetDSN() string {
	if d.IsSQLite() {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	Issuer           string `mapstructure:"issuer"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type MatchmakingConfig struct {
	DefaultPlayersPerMatch int  `mapstructure:"default_players_per_match"`
	MinPlayersPerMatch     int  `mapstructure:"min_players_per_match"`
	MaxPlayersPerMatch     int  `mapstructure:"max_players_per_match"`
	UseTransactions        bool `mapstructure:"use_transactions"`
	OrphanGraceSeconds     int  `mapstructure:"orphan_grace_seconds"`
	RepairIntervalSeconds  int  `mapstructure:"repair_interval_seconds"`
	SweepIntervalSeconds   int  `mapstructure:"sweep_interval_seconds"`
	EnqueueRateLimit       int  `mapstructure:"enqueue_rate_limit"`
}

func (m *MatchmakingConfig) OrphanGrace() time.Duration {
	return time.Duration(m.OrphanGraceSeconds) * time.Second
}

func (m *MatchmakingConfig) RepairInterval() time.Duration {
	return time.Duration(m.RepairIntervalSeconds) * time.Second
}

func (m *MatchmakingConfig) SweepInterval() time.Duration {
	return time.Duration(m.SweepIntervalSeconds) * time.Second
}

type ProgressionConfig struct {
	XPPerLevel     int64 `mapstructure:"xp_per_level"`
	MaxXPPerReport int64 `mapstructure:"max_xp_per_report"`
}
