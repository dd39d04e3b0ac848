package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/tuncore/limits"
	"github.com/opd-ai/tuncore/selection"
	"github.com/opd-ai/tuncore/transform"
)

// SupportedSchema is the only schema_version Load accepts.
const SupportedSchema = "v1"

// EnvPrefix prefixes environment overrides. Nested keys use "__", e.g.
// TUNCORE_LOG_LEVEL=debug.
const EnvPrefix = "TUNCORE_"

// CompressionNone disables payload compression.
const CompressionNone = "none"

// Default values applied by Load.
const (
	DefaultTransform     = "null"
	DefaultStrategy      = "load"
	DefaultLogLevel      = "info"
	DefaultRoundInterval = 10 * time.Second
)

// SupernodeConfig is one statically configured supernode.
type SupernodeConfig struct {
	Address string `koanf:"address"`
	MAC     string `koanf:"mac"` // optional, needed by the mac strategy
}

// Config holds the tunnel edge settings.
type Config struct {
	SchemaVersion    string            `koanf:"schema_version"`
	Transform        string            `koanf:"transform"`   // null|chacha20
	Compression      string            `koanf:"compression"` // none|lz4
	Key              string            `koanf:"key"`         // pass-phrase, required by ciphers
	Strategy         string            `koanf:"strategy"`    // load|rtt|mac
	MaxPacketSize    int               `koanf:"max_packet_size"`
	RoundInterval    time.Duration     `koanf:"round_interval"`
	HeaderEncryption bool              `koanf:"header_encryption"`
	LogLevel         string            `koanf:"log_level"`
	Supernodes       []SupernodeConfig `koanf:"supernodes"`
}

// Load merges the YAML file at path (if present) with TUNCORE_ environment
// variables, applies defaults and validates the result.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Load",
		"package":     "config",
		"path":        path,
		"transform":   cfg.Transform,
		"compression": cfg.Compression,
		"strategy":    cfg.Strategy,
		"supernodes":  len(cfg.Supernodes),
	}).Debug("Configuration loaded")
	return cfg, nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(c *Config) {
	if c.SchemaVersion == "" {
		c.SchemaVersion = SupportedSchema
	}
	if c.Transform == "" {
		c.Transform = DefaultTransform
	}
	if c.Compression == "" {
		c.Compression = CompressionNone
	}
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.MaxPacketSize == 0 {
		c.MaxPacketSize = limits.MaxPacketSize
	}
	if c.RoundInterval == 0 {
		c.RoundInterval = DefaultRoundInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks every field against the built-in transforms and
// strategies. All problems are reported together.
func (c Config) Validate() error {
	return c.ValidateWith(transform.DefaultRegistry())
}

// ValidateWith is Validate against the transforms registered in reg.
func (c Config) ValidateWith(reg *transform.Registry) error {
	var errs []error

	if d, ok := reg.ByName(c.Transform); !ok {
		errs = append(errs, fmt.Errorf("transform %q: %w", c.Transform, transform.ErrUnknownTransform))
	} else if d.IsCompress {
		errs = append(errs, fmt.Errorf("transform %q is a compressor, set it as compression", c.Transform))
	} else if !d.NoEncryption && c.Key == "" {
		errs = append(errs, fmt.Errorf("transform %q requires a key", c.Transform))
	}

	if !strings.EqualFold(c.Compression, CompressionNone) {
		if d, ok := reg.ByName(c.Compression); !ok {
			errs = append(errs, fmt.Errorf("compression %q: %w", c.Compression, transform.ErrUnknownTransform))
		} else if !d.IsCompress {
			errs = append(errs, fmt.Errorf("compression %q is not a compressor", c.Compression))
		}
	}

	if _, err := selection.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}

	if c.MaxPacketSize < 1 || c.MaxPacketSize > limits.MaxPacketSize {
		errs = append(errs, fmt.Errorf("%w: max_packet_size %d outside 1..%d",
			limits.ErrPacketTooLarge, c.MaxPacketSize, limits.MaxPacketSize))
	}

	if c.RoundInterval <= 0 {
		errs = append(errs, fmt.Errorf("round_interval must be positive, got %s", c.RoundInterval))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	for i, sn := range c.Supernodes {
		if _, _, err := net.SplitHostPort(sn.Address); err != nil {
			errs = append(errs, fmt.Errorf("supernodes[%d]: %w", i, err))
		}
		if sn.MAC != "" {
			if hw, err := net.ParseMAC(sn.MAC); err != nil {
				errs = append(errs, fmt.Errorf("supernodes[%d]: %w", i, err))
			} else if len(hw) != 6 {
				errs = append(errs, fmt.Errorf("supernodes[%d]: mac %q is not 48 bits", i, sn.MAC))
			}
		}
	}

	return errors.Join(errs...)
}

// CompressionEnabled reports whether a compressor is configured.
func (c Config) CompressionEnabled() bool {
	return !strings.EqualFold(c.Compression, CompressionNone)
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
