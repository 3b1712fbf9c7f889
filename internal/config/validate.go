package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCompression(); err != nil {
		return err
	}
	if err := c.validateRedundancy(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCompression() error {
	if c.Compression.Level < 1 || c.Compression.Level > 22 {
		return fmt.Errorf("compression.level must be between 1 and 22, got %d", c.Compression.Level)
	}
	if c.Compression.Threads < 0 {
		return errors.New("compression.threads must be >= 0 (0 = all cores)")
	}
	return nil
}

func (c *Config) validateRedundancy() error {
	if c.Redundancy.RecoveryPercent < 1 || c.Redundancy.RecoveryPercent > 100 {
		return fmt.Errorf("redundancy.recovery_percent must be between 1 and 100, got %d", c.Redundancy.RecoveryPercent)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
