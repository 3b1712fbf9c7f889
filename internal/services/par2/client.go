package par2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

var commandContext = exec.CommandContext

// sliceSize pins the PAR2 slice size to 1 MiB so recovery data granularity
// is stable across runs.
const sliceSize = 1048576

// Client defines the redundancy encoder behaviour the pipeline depends on.
type Client interface {
	Create(ctx context.Context, filePath string, recoveryPercent int) ([]string, error)
	Verify(ctx context.Context, par2Path string) (Outcome, string, error)
	Repair(ctx context.Context, par2Path string) (string, error)
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

// CLI wraps the par2 command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "par2"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Create generates the redundancy set for filePath and returns the paths of
// the produced .par2 files (main descriptor plus volumes), sorted.
func (c *CLI) Create(ctx context.Context, filePath string, recoveryPercent int) ([]string, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.New("file path required")
	}
	if recoveryPercent < 1 || recoveryPercent > 100 {
		return nil, fmt.Errorf("recovery percent %d out of range 1-100", recoveryPercent)
	}

	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)
	descriptor := filepath.Join(dir, base+".par2")

	args := []string{
		"create",
		fmt.Sprintf("-r%d", recoveryPercent),
		fmt.Sprintf("-s%d", sliceSize),
		"-n1",
		descriptor,
		filePath,
	}
	cmd := commandContext(ctx, c.binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("par2 create %s: %w: %s", base, err, lastLine(output.String()))
	}

	produced, err := findSetFiles(dir, base)
	if err != nil {
		return nil, err
	}
	if len(produced) == 0 {
		return nil, fmt.Errorf("par2 create %s: no recovery files produced", base)
	}
	return produced, nil
}

// Verify runs the encoder's own verification against the descriptor and
// returns the classified outcome together with the tool output.
func (c *CLI) Verify(ctx context.Context, par2Path string) (Outcome, string, error) {
	if strings.TrimSpace(par2Path) == "" {
		return OutcomeFailed, "", errors.New("par2 descriptor path required")
	}

	cmd := commandContext(ctx, c.binary, "verify", par2Path)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	text := output.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return classifyOutcome(0, text), text, nil
	case errors.As(err, &exitErr):
		return classifyOutcome(exitErr.ExitCode(), text), text, nil
	default:
		return OutcomeFailed, text, fmt.Errorf("par2 verify %s: %w", filepath.Base(par2Path), err)
	}
}

// Repair attempts to reconstruct damaged data from the recovery set.
func (c *CLI) Repair(ctx context.Context, par2Path string) (string, error) {
	if strings.TrimSpace(par2Path) == "" {
		return "", errors.New("par2 descriptor path required")
	}

	cmd := commandContext(ctx, c.binary, "repair", par2Path)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return output.String(), fmt.Errorf("par2 repair %s: %w: %s", filepath.Base(par2Path), err, lastLine(output.String()))
	}
	return output.String(), nil
}

// findSetFiles locates the descriptor and volume files for base in dir.
func findSetFiles(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan recovery output: %w", err)
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, base) || !strings.HasSuffix(name, ".par2") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Client = (*CLI)(nil)
