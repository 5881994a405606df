// Package config loads the YAML configuration of the adsdump tool.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	adssymbols "github.com/wippyai/ads-symbols"
	"github.com/wippyai/ads-symbols/catalog"
	"github.com/wippyai/ads-symbols/errors"
)

// Config is the adsdump configuration.
type Config struct {
	Target  Target  `yaml:"target"`
	Blobs   Blobs   `yaml:"blobs"`
	Catalog Catalog `yaml:"catalog"`
	Logging Logging `yaml:"logging"`
}

// Target is the controller runtime the blobs belong to.
type Target struct {
	NetID string `yaml:"net_id"`
	Port  uint16 `yaml:"port"`
}

// Blobs names the files holding the uploaded tables.
type Blobs struct {
	Symbols   string `yaml:"symbols"`
	DataTypes string `yaml:"datatypes"`
}

// Catalog holds catalog construction options.
type Catalog struct {
	Strict      bool   `yaml:"strict"`
	PointerSize uint32 `yaml:"pointer_size"`
}

// Logging contains logging configuration
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Target: Target{
			NetID: "127.0.0.1.1.1",
			Port:  adssymbols.DefaultPort,
		},
		Blobs: Blobs{
			Symbols:   "symbols.bin",
			DataTypes: "datatypes.bin",
		},
		Catalog: Catalog{
			PointerSize: catalog.DefaultPointerSize,
		},
		Logging: Logging{
			Level: "warn",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindIO).
			Detail("read config file %s", path).
			Cause(err).
			Build()
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("parse config file %s", path).
			Cause(err).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "marshal config")
	}
	return data, nil
}

// Validate checks field values that decoding alone cannot.
func (c *Config) Validate() error {
	if _, err := c.Target.Address(); err != nil {
		return err
	}
	if c.Catalog.PointerSize != 4 && c.Catalog.PointerSize != 8 {
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("catalog.pointer_size must be 4 or 8, got %d", c.Catalog.PointerSize))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("logging.level %q", c.Logging.Level).
			Cause(err).
			Build()
	}
	return nil
}

// Address parses the target address.
func (t Target) Address() (adssymbols.Address, error) {
	return adssymbols.ParseAddress(fmt.Sprintf("%s:%d", t.NetID, t.Port))
}

// Options converts the catalog section into construction options.
func (c Catalog) Options() []catalog.Option {
	return []catalog.Option{
		catalog.WithStrict(c.Strict),
		catalog.WithPointerSize(c.PointerSize),
	}
}

// Build constructs the logger described by the logging section.
func (l Logging) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("logging.level %q", l.Level).
			Cause(err).
			Build()
	}

	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
