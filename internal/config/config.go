package config

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thomhuang/australia-postcode/dataset"
	"github.com/thomhuang/australia-postcode/postcode"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Nearby  NearbyConfig  `yaml:"nearby" mapstructure:"nearby"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the postcode dataset. Exactly one of Path and URL is set.
type DatasetConfig struct {
	Path    string        `yaml:"path" mapstructure:"path"`
	URL     string        `yaml:"url" mapstructure:"url"`
	Member  string        `yaml:"member" mapstructure:"member"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// NearbyConfig configures the nearby postcode batch job.
type NearbyConfig struct {
	RadiusKm float64 `yaml:"radius_km" mapstructure:"radius_km"`
	Workers  int     `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POSTCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.url", "")
	v.SetDefault("dataset.member", "")
	v.SetDefault("dataset.timeout", 30*time.Second)
	v.SetDefault("nearby.radius_km", 25.0)
	v.SetDefault("nearby.workers", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings needed to load a catalog.
func (c *Config) Validate() error {
	switch {
	case c.Dataset.Path == "" && c.Dataset.URL == "":
		return eris.New("config: one of dataset.path or dataset.url is required")
	case c.Dataset.Path != "" && c.Dataset.URL != "":
		return eris.New("config: dataset.path and dataset.url are mutually exclusive")
	case c.Dataset.Timeout <= 0:
		return eris.New("config: dataset.timeout must be positive")
	case c.Nearby.RadiusKm < 0:
		return eris.New("config: nearby.radius_km must not be negative")
	}
	return nil
}

// Source returns the dataset source described by the configuration.
func (c DatasetConfig) Source() postcode.Source {
	if c.URL != "" {
		return dataset.HTTP{URL: c.URL, Member: c.Member}
	}
	return dataset.File{Path: c.Path, Member: c.Member}
}

// LoadCatalog builds a catalog from the configured dataset, bounded by the
// dataset timeout.
func (c *Config) LoadCatalog(ctx context.Context) (*postcode.Catalog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Dataset.Timeout)
	defer cancel()

	catalog := postcode.New(c.Dataset.Source())
	if err := catalog.Load(ctx); err != nil {
		return nil, err
	}
	return catalog, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
