package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Entry describes one archive member from a 7z listing.
type Entry struct {
	Path  string
	Size  int64
	IsDir bool
}

// Client defines the container codec behaviour the pipeline depends on.
type Client interface {
	List(ctx context.Context, archivePath string) ([]Entry, error)
	Extract(ctx context.Context, archivePath, destDir string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the 7z command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "7z"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// List returns the archive's member table without extracting anything.
func (c *CLI) List(ctx context.Context, archivePath string) ([]Entry, error) {
	if strings.TrimSpace(archivePath) == "" {
		return nil, errors.New("archive path required")
	}

	cmd := commandContext(ctx, c.binary, "l", "-slt", archivePath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("7z list %s: %w: %s", archivePath, err, firstLine(stderr.String()))
	}
	return parseListing(stdout.String()), nil
}

// Extract unpacks the archive into destDir, creating it if needed.
func (c *CLI) Extract(ctx context.Context, archivePath, destDir string) error {
	if strings.TrimSpace(archivePath) == "" {
		return errors.New("archive path required")
	}
	if strings.TrimSpace(destDir) == "" {
		return errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	cmd := commandContext(ctx, c.binary, "x", archivePath, "-o"+destDir, "-y")
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("7z extract %s: %w: %s", archivePath, err, firstLine(output.String()))
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}

var _ Client = (*CLI)(nil)
