// Package config loads and validates the application configuration
// from YAML with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Sizer    SizerConfig    `mapstructure:"sizer"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Market   MarketConfig   `mapstructure:"market"`
	Data     DataConfig     `mapstructure:"data"`
	Deriv    DerivConfig    `mapstructure:"deriv"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// EngineConfig drives the contract engine.
type EngineConfig struct {
	InitialCash      float64       `mapstructure:"initial_cash"`
	PayoutRate       float64       `mapstructure:"payout_rate"`
	Expiry           time.Duration `mapstructure:"expiry"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
	MaxConcurrent    int           `mapstructure:"max_concurrent"`
	StopOnBankruptcy bool          `mapstructure:"stop_on_bankruptcy"`
}

// SizerConfig selects a stake sizer. Only the section matching Kind is
// read.
type SizerConfig struct {
	Kind        string            `mapstructure:"kind"` // progressive, fixed, martingale, compound
	Progressive ProgressiveConfig `mapstructure:"progressive"`
	Fixed       FixedConfig       `mapstructure:"fixed"`
	Martingale  MultiplierConfig  `mapstructure:"martingale"`
	Compound    MultiplierConfig  `mapstructure:"compound"`
}

type ProgressiveConfig struct {
	BaseStakePct     float64 `mapstructure:"base_stake_pct"`
	MinStakePct      float64 `mapstructure:"min_stake_pct"`
	MaxStakePct      float64 `mapstructure:"max_stake_pct"`
	MaxWinStreak     int     `mapstructure:"max_win_streak"`
	MaxLossStreak    int     `mapstructure:"max_loss_streak"`
	StrengthBonusPct float64 `mapstructure:"strength_bonus_pct"`
	BaselineStrength int     `mapstructure:"baseline_strength"`
}

type FixedConfig struct {
	Stake float64 `mapstructure:"stake"`
}

// MultiplierConfig covers the martingale and compound progressions.
type MultiplierConfig struct {
	BaseStake float64 `mapstructure:"base_stake"`
	Factor    float64 `mapstructure:"factor"`
	MaxSteps  int     `mapstructure:"max_steps"`
}

type StrategyConfig struct {
	Name   string         `mapstructure:"name"`
	Params map[string]any `mapstructure:"params"`
}

type MarketConfig struct {
	Symbol      string `mapstructure:"symbol"`
	Granularity int    `mapstructure:"granularity"` // candle size in seconds
}

// DataConfig points at the local candle cache.
type DataConfig struct {
	DSN string `mapstructure:"dsn"`
}

// DerivConfig holds the WebSocket API connection settings used when
// fetching candles.
type DerivConfig struct {
	AppID    string `mapstructure:"app_id"`
	Token    string `mapstructure:"token"`
	Endpoint string `mapstructure:"endpoint"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			InitialCash:      1000,
			PayoutRate:       0.95,
			Expiry:           5 * time.Minute,
			Cooldown:         15 * time.Minute,
			MaxConcurrent:    1,
			StopOnBankruptcy: true,
		},
		Sizer: SizerConfig{
			Kind: "progressive",
			Progressive: ProgressiveConfig{
				BaseStakePct:     0.01,
				MinStakePct:      0.005,
				MaxStakePct:      0.05,
				MaxWinStreak:     2,
				MaxLossStreak:    3,
				StrengthBonusPct: 0.10,
				BaselineStrength: 2,
			},
			Fixed:      FixedConfig{Stake: 10},
			Martingale: MultiplierConfig{BaseStake: 10, Factor: 2.0, MaxSteps: 4},
			Compound:   MultiplierConfig{BaseStake: 10, Factor: 1.5, MaxSteps: 3},
		},
		Strategy: StrategyConfig{
			Name: "mean_reversion",
		},
		Market: MarketConfig{
			Symbol:      "R_75",
			Granularity: 60,
		},
		Data: DataConfig{
			DSN: "candles.db",
		},
		Deriv: DerivConfig{
			Endpoint: "wss://ws.derivws.com/websockets/v3",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "results",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

var sizerKinds = map[string]bool{
	"progressive": true,
	"fixed":       true,
	"martingale":  true,
	"compound":    true,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Engine.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("engine.initial_cash must be positive, got %f", c.Engine.InitialCash))
	}
	if c.Engine.PayoutRate < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("engine.payout_rate cannot be negative, got %f", c.Engine.PayoutRate))
	}
	if c.Engine.Expiry <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("engine.expiry must be positive, got %s", c.Engine.Expiry))
	}
	if c.Engine.Cooldown < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("engine.cooldown cannot be negative, got %s", c.Engine.Cooldown))
	}
	if c.Engine.MaxConcurrent < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("engine.max_concurrent must be at least 1, got %d", c.Engine.MaxConcurrent))
	}

	if !sizerKinds[c.Sizer.Kind] {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown sizer.kind %q", c.Sizer.Kind))
	}

	if c.Strategy.Name == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("strategy.name is required"))
	}

	if c.Market.Symbol == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("market.symbol is required"))
	}
	if c.Market.Granularity < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("market.granularity must be positive seconds, got %d", c.Market.Granularity))
	}

	switch c.Archive.Type {
	case "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive.type must be localfs or s3, got %q", c.Archive.Type))
	}
	if c.Archive.Enabled && c.Archive.Type == "s3" && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("archive.s3.bucket required when archive type is s3"))
	}

	return nil
}
