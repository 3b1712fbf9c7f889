package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Compression.Level != 19 {
		t.Errorf("default level = %d, want 19", cfg.Compression.Level)
	}
	if !cfg.Compression.LongWindow() || !cfg.Compression.Checksum() {
		t.Errorf("long window and checksum should default on")
	}
	if cfg.Redundancy.RecoveryPercent != 10 || !cfg.Redundancy.Enabled() {
		t.Errorf("redundancy defaults = %+v, want enabled at 10%%", cfg.Redundancy)
	}
	if cfg.Batch.Workers != 1 {
		t.Errorf("default workers = %d, want 1", cfg.Batch.Workers)
	}
}

func TestSampleConfigParsesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Sample()), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	want := Default()
	if cfg.Compression != want.Compression {
		t.Errorf("compression = %+v, want %+v", cfg.Compression, want.Compression)
	}
	if cfg.Redundancy != want.Redundancy {
		t.Errorf("redundancy = %+v, want %+v", cfg.Redundancy, want.Redundancy)
	}
	if cfg.Output.Dir != "processed" || cfg.Output.Flat {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("second write should refuse to overwrite")
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("explicit missing config path should fail")
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"level too low", func(c *Config) { c.Compression.Level = 0 }, "compression.level"},
		{"level too high", func(c *Config) { c.Compression.Level = 23 }, "compression.level"},
		{"negative threads", func(c *Config) { c.Compression.Threads = -1 }, "compression.threads"},
		{"recovery too low", func(c *Config) { c.Redundancy.RecoveryPercent = 0 }, "recovery_percent"},
		{"recovery too high", func(c *Config) { c.Redundancy.RecoveryPercent = 101 }, "recovery_percent"},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }, "batch.workers"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}
