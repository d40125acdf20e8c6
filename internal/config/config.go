package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Settings   SettingsConfig   `yaml:"settings"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Batch      BatchConfig      `yaml:"batch"`
	Insights   InsightsConfig   `yaml:"insights"`
	Alerts     AlertsConfig     `yaml:"alerts"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// StoreConfig selects the event store backend. "memory" is the default;
// "redis" externalizes the log and enables query timeouts.
type StoreConfig struct {
	Backend      string        `yaml:"backend"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	Redis        RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type SettingsConfig struct {
	Path string `yaml:"path"`
}

type KafkaConfig struct {
	Brokers []string          `yaml:"brokers"`
	Topics  map[string]string `yaml:"topics"`
}

type ClickHouseConfig struct {
	Addr         string `yaml:"addr"`
	Database     string `yaml:"database"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type BatchConfig struct {
	Size          int           `yaml:"size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// InsightsConfig gates and tunes the heuristic insight rules. Rules are on
// by default; set disabled: true to turn one off.
type InsightsConfig struct {
	CategoryOutlier       CategoryOutlierConfig       `yaml:"category_outlier"`
	RevenueTrend          RevenueTrendConfig          `yaml:"revenue_trend"`
	PlatformConcentration PlatformConcentrationConfig `yaml:"platform_concentration"`
	EngagementDrop        EngagementDropConfig        `yaml:"engagement_drop"`
}

type CategoryOutlierConfig struct {
	Disabled   bool    `yaml:"disabled"`
	MinPosts   int     `yaml:"min_posts"`
	MinLiftPct float64 `yaml:"min_lift_pct"`
}

type RevenueTrendConfig struct {
	Disabled     bool    `yaml:"disabled"`
	MinChangePct float64 `yaml:"min_change_pct"`
}

type PlatformConcentrationConfig struct {
	Disabled   bool    `yaml:"disabled"`
	MinShare   float64 `yaml:"min_share"`
	MinRevenue float64 `yaml:"min_revenue"`
}

type EngagementDropConfig struct {
	Disabled   bool    `yaml:"disabled"`
	MinDropPct float64 `yaml:"min_drop_pct"`
}

// AlertsConfig tunes the rule-triggered dashboard alerts.
type AlertsConfig struct {
	RevenueDropPct   float64 `yaml:"revenue_drop_pct"`
	ErrorSpikeCount  int     `yaml:"error_spike_count"`
	InactivityDays   int     `yaml:"inactivity_days"`
	RevenueMilestone float64 `yaml:"revenue_milestone"`
}

// Load reads a YAML config file. Environment variables in the file are
// expanded before parsing; missing values fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is provided: memory
// store, local settings db, all insight rules enabled.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.QueryTimeout == 0 {
		cfg.Store.QueryTimeout = 5 * time.Second
	}
	if cfg.Store.Redis.Key == "" {
		cfg.Store.Redis.Key = "pulse:events"
	}
	if cfg.Settings.Path == "" {
		cfg.Settings.Path = "data/pulse.db"
	}
	if cfg.Batch.Size == 0 {
		cfg.Batch.Size = 1000
	}
	if cfg.Batch.FlushInterval == 0 {
		cfg.Batch.FlushInterval = 5 * time.Second
	}
	if cfg.ClickHouse.MaxOpenConns == 0 {
		cfg.ClickHouse.MaxOpenConns = 10
	}
	if cfg.ClickHouse.MaxIdleConns == 0 {
		cfg.ClickHouse.MaxIdleConns = 5
	}

	if cfg.Insights.CategoryOutlier.MinPosts == 0 {
		cfg.Insights.CategoryOutlier.MinPosts = 3
	}
	if cfg.Insights.CategoryOutlier.MinLiftPct == 0 {
		cfg.Insights.CategoryOutlier.MinLiftPct = 40
	}
	if cfg.Insights.RevenueTrend.MinChangePct == 0 {
		cfg.Insights.RevenueTrend.MinChangePct = 20
	}
	if cfg.Insights.PlatformConcentration.MinShare == 0 {
		cfg.Insights.PlatformConcentration.MinShare = 0.6
	}
	if cfg.Insights.PlatformConcentration.MinRevenue == 0 {
		cfg.Insights.PlatformConcentration.MinRevenue = 100
	}
	if cfg.Insights.EngagementDrop.MinDropPct == 0 {
		cfg.Insights.EngagementDrop.MinDropPct = 25
	}

	if cfg.Alerts.RevenueDropPct == 0 {
		cfg.Alerts.RevenueDropPct = 30
	}
	if cfg.Alerts.ErrorSpikeCount == 0 {
		cfg.Alerts.ErrorSpikeCount = 10
	}
	if cfg.Alerts.InactivityDays == 0 {
		cfg.Alerts.InactivityDays = 7
	}
	if cfg.Alerts.RevenueMilestone == 0 {
		cfg.Alerts.RevenueMilestone = 1000
	}
}
