package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"coldstore/internal/config"
	"coldstore/internal/logging"
	"coldstore/internal/pipeline"
	"coldstore/internal/services/par2"
	"coldstore/internal/services/sevenzip"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	once     sync.Once
	config   *config.Config
	logger   *slog.Logger
	setupErr error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensure() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.setupErr = err
			return
		}

		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = *c.logLevelFlag
		}
		format := cfg.Logging.Format
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			format = *c.logFormatFlag
		}
		writer, err := logWriter(cfg.Paths.LogDir)
		if err != nil {
			c.setupErr = err
			return
		}
		logger, err := logging.New(logging.Options{Level: level, Format: format, Writer: writer})
		if err != nil {
			c.setupErr = err
			return
		}

		c.config = cfg
		c.logger = logger
	})
	return c.config, c.logger, c.setupErr
}

func (c *commandContext) sevenZip() sevenzip.Client {
	cfg, _, _ := c.ensure()
	binary := ""
	if cfg != nil {
		binary = cfg.Tools.SevenZipBinary
	}
	return sevenzip.NewCLI(sevenzip.WithBinary(binary))
}

func (c *commandContext) par2Client() par2.Client {
	cfg, _, _ := c.ensure()
	binary := ""
	if cfg != nil {
		binary = cfg.Tools.Par2Binary
	}
	return par2.NewCLI(par2.WithBinary(binary))
}

func (c *commandContext) orchestrator() (*pipeline.Orchestrator, error) {
	cfg, logger, err := c.ensure()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, c.sevenZip(), c.par2Client(), logger), nil
}

// logWriter tees log output into <logDir>/coldstore.log when a log
// directory is configured.
func logWriter(logDir string) (io.Writer, error) {
	if strings.TrimSpace(logDir) == "" {
		return os.Stderr, nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(logDir, "coldstore.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return io.MultiWriter(os.Stderr, file), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
