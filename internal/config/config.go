// Package config holds the skeletonize configuration and its viper loading
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"image-skeleton/internal/algorithms"
	"image-skeleton/internal/core"
)

// EnvPrefix is prepended to environment overrides, e.g. SKELETONIZE_THINNING_METHOD
const EnvPrefix = "SKELETONIZE"

// Config is the full application configuration
type Config struct {
	Log          Log          `mapstructure:"log" yaml:"log"`
	Thinning     Thinning     `mapstructure:"thinning" yaml:"thinning"`
	Binarization Binarization `mapstructure:"binarization" yaml:"binarization"`
	// Pipeline replaces the default binarize-then-thin steps when non-empty
	Pipeline []Step `mapstructure:"pipeline" yaml:"pipeline"`
	// Region is "x,y,w,h" or "x1,y1;x2,y2;..." and limits processing to that area
	Region  string `mapstructure:"region" yaml:"region"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

type Log struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

type Thinning struct {
	Method        string `mapstructure:"method" yaml:"method"`
	Workers       int    `mapstructure:"workers" yaml:"workers"`
	MaxIterations int    `mapstructure:"max_iterations" yaml:"max_iterations"`
}

type Binarization struct {
	// Method is none, otsu, niblack, sauvola, wolf or nick
	Method     string `mapstructure:"method" yaml:"method"`
	WindowSize int    `mapstructure:"window_size" yaml:"window_size"`
	// K is nil when unset, leaving the method's default in place
	K      *float64 `mapstructure:"k" yaml:"k,omitempty"`
	R      float64  `mapstructure:"r" yaml:"r"`
	Invert bool     `mapstructure:"invert" yaml:"invert"`
}

// Step is one explicit pipeline step
type Step struct {
	Algorithm  string                 `mapstructure:"algorithm" yaml:"algorithm"`
	Parameters map[string]interface{} `mapstructure:"parameters" yaml:"parameters"`
	Disabled   bool                   `mapstructure:"disabled" yaml:"disabled"`
}

// SetDefaults registers the default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.debug", false)
	v.SetDefault("thinning.method", algorithms.ThinningZhangSuen.String())
	v.SetDefault("thinning.workers", 1)
	v.SetDefault("thinning.max_iterations", 0)
	v.SetDefault("binarization.method", "none")
	v.SetDefault("binarization.window_size", 15)
	v.SetDefault("binarization.r", 128.0)
	v.SetDefault("binarization.invert", false)
	v.SetDefault("region", "")
	v.SetDefault("metrics", false)
}

// Load reads configFile (optional) plus environment overrides into a validated Config
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// binarization.k has no default, so the key is bound for env lookup explicitly
	if err := v.BindEnv("binarization.k"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("skeletonize")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// an unchanged --k flag still decodes as its zero default
	if !v.IsSet("binarization.k") {
		c.Binarization.K = nil
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks enum names and ranges
func (c *Config) Validate() error {
	if _, err := algorithms.ParseThinningType(c.Thinning.Method); err != nil {
		return fmt.Errorf("thinning.method: %w", err)
	}
	if c.Thinning.Workers < 0 {
		return fmt.Errorf("thinning.workers must not be negative")
	}
	if c.Thinning.MaxIterations < 0 {
		return fmt.Errorf("thinning.max_iterations must not be negative")
	}

	switch c.Binarization.Method {
	case "none", "otsu":
	default:
		if _, err := algorithms.ParseLocalBinarizationMethod(c.Binarization.Method); err != nil {
			return fmt.Errorf("binarization.method: %w", err)
		}
		if c.Binarization.WindowSize < 3 {
			return fmt.Errorf("binarization.window_size must be at least 3")
		}
		if k := c.Binarization.K; k != nil && (*k < -1 || *k > 1) {
			return fmt.Errorf("binarization.k must be between -1 and 1, got %g", *k)
		}
	}

	if _, err := c.ParseRegion(); err != nil {
		return fmt.Errorf("region: %w", err)
	}

	for i, step := range c.Pipeline {
		if !algorithms.IsValidAlgorithm(step.Algorithm) {
			return fmt.Errorf("pipeline[%d]: unknown algorithm %q", i, step.Algorithm)
		}
	}

	return nil
}

// ParseRegion returns the configured region, zero when unset
func (c *Config) ParseRegion() (core.Region, error) {
	if strings.TrimSpace(c.Region) == "" {
		return core.Region{}, nil
	}
	return core.ParseRegion(c.Region)
}

// ThinningParams returns the registry parameters for the thinning step
func (c *Config) ThinningParams() map[string]interface{} {
	return map[string]interface{}{
		"method":         c.Thinning.Method,
		"workers":        float64(c.Thinning.Workers),
		"max_iterations": float64(c.Thinning.MaxIterations),
	}
}

// BinarizationParams returns the registry parameters for the binarization step.
// An unset K keeps the method's own default.
func (c *Config) BinarizationParams() map[string]interface{} {
	params := map[string]interface{}{
		"invert": c.Binarization.Invert,
	}
	if c.Binarization.Method == "otsu" {
		return params
	}

	params["window_size"] = float64(c.Binarization.WindowSize)
	params["r"] = c.Binarization.R
	if c.Binarization.K != nil {
		params["k"] = *c.Binarization.K
	}
	return params
}
