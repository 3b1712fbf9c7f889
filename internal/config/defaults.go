package config

import (
	"os"
	"strings"
)

const (
	defaultLevel           = 19
	defaultRecoveryPercent = 10
	defaultWorkers         = 1
)

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = "processed"
	}
	if c.Compression.Level == 0 {
		c.Compression.Level = defaultLevel
	}
	if c.Redundancy.RecoveryPercent == 0 {
		c.Redundancy.RecoveryPercent = defaultRecoveryPercent
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = defaultWorkers
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = os.TempDir()
	}
	if strings.TrimSpace(c.Tools.SevenZipBinary) == "" {
		c.Tools.SevenZipBinary = "7z"
	}
	if strings.TrimSpace(c.Tools.Par2Binary) == "" {
		c.Tools.Par2Binary = "par2"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = "console"
	}
}
