package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Output controls where sealed artifact sets land.
type Output struct {
	Dir  string `toml:"dir"`
	Flat bool   `toml:"flat"`
}

// Compression holds the zstd packaging parameters. The disable flags mirror
// the CLI's --no-long and --no-check so an absent section means both
// features stay on.
type Compression struct {
	Level          int  `toml:"level"`
	Threads        int  `toml:"threads"`
	NoLongWindow   bool `toml:"no_long_window"`
	NoChecksum     bool `toml:"no_checksum"`
	NoVerification bool `toml:"no_verification"`
}

// LongWindow reports whether long-range matching is enabled.
func (c Compression) LongWindow() bool { return !c.NoLongWindow }

// Checksum reports whether the embedded frame checksum is enabled.
func (c Compression) Checksum() bool { return !c.NoChecksum }

// Redundancy holds the PAR2 recovery set parameters.
type Redundancy struct {
	Disabled        bool `toml:"disabled"`
	RecoveryPercent int  `toml:"recovery_percent"`
}

// Enabled reports whether PAR2 recovery files are generated.
func (r Redundancy) Enabled() bool { return !r.Disabled }

// Batch controls multi-archive processing.
type Batch struct {
	Workers int `toml:"workers"`
}

// Paths contains working directory configuration.
type Paths struct {
	TempDir string `toml:"temp_dir"`
	LogDir  string `toml:"log_dir"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	SevenZipBinary string `toml:"sevenzip_binary"`
	Par2Binary     string `toml:"par2_binary"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration object.
type Config struct {
	Output      Output      `toml:"output"`
	Compression Compression `toml:"compression"`
	Redundancy  Redundancy  `toml:"redundancy"`
	Batch       Batch       `toml:"batch"`
	Paths       Paths       `toml:"paths"`
	Tools       Tools       `toml:"tools"`
	Logging     Logging     `toml:"logging"`
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "coldstore", "config.toml"), nil
}

// Load reads the configuration from path. A missing file yields defaults
// when the path is the standard location; an explicitly requested file that
// does not exist is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
