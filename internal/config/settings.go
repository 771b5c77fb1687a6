package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rgehrsitz/ssopt/internal/discount"
)

// EnvPrefix prefixes every environment override, e.g. SSOPT_LOG_LEVEL.
const EnvPrefix = "SSOPT"

// Settings are process-wide options, as opposed to a household file.
type Settings struct {
	LogLevel     string        `mapstructure:"log_level"`
	DataDir      string        `mapstructure:"data_dir"`
	LifeTableURL string        `mapstructure:"life_table_url"`
	RedisAddr    string        `mapstructure:"redis_addr"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	Workers      int           `mapstructure:"workers"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	TreasuryURL  string        `mapstructure:"treasury_url"`
	FREDURL      string        `mapstructure:"fred_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:    "info",
		DataDir:     "data/lifetables",
		CacheTTL:    12 * time.Hour,
		Workers:     runtime.NumCPU(),
		ListenAddr:  ":8080",
		TreasuryURL: discount.DefaultTreasuryURL,
		FREDURL:     discount.DefaultFREDURL,
		Timeout:     10 * time.Second,
	}
}

// LoadSettings reads .env (if present), then an optional settings file, then
// SSOPT_* environment variables, later sources winning. An empty file means
// look for ssopt.yaml in the working directory and $HOME/.config/ssopt.
func LoadSettings(file string) (Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("life_table_url", defaults.LifeTableURL)
	v.SetDefault("redis_addr", defaults.RedisAddr)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("treasury_url", defaults.TreasuryURL)
	v.SetDefault("fred_url", defaults.FREDURL)
	v.SetDefault("timeout", defaults.Timeout)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("ssopt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ssopt")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks settings that would otherwise fail later and less clearly.
func (s Settings) Validate() error {
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
