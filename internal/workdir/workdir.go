// Package workdir manages the per-run temporary directory. Each pipeline run
// owns its directory exclusively, guarded by a lock file so a later run's
// preflight can distinguish live runs from the debris of a killed process.
package workdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"coldstore/internal/logging"
)

const (
	prefix   = "coldstore-"
	lockName = ".coldstore.lock"
)

// Dir is an exclusively owned working directory for one pipeline run.
type Dir struct {
	path string
	lock *flock.Flock
}

// Create makes a fresh working directory under tempRoot and takes its lock.
func Create(tempRoot, runID string) (*Dir, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run ID required")
	}
	path := filepath.Join(tempRoot, prefix+runID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	lock := flock.New(filepath.Join(path, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		_ = os.RemoveAll(path)
		return nil, fmt.Errorf("lock working directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("working directory already locked: %s", path)
	}
	return &Dir{path: path, lock: lock}, nil
}

// Path returns the working directory path.
func (d *Dir) Path() string { return d.path }

// Release unlocks and removes the working directory. Safe to call twice.
func (d *Dir) Release() error {
	if d == nil || d.path == "" {
		return nil
	}
	if d.lock != nil {
		_ = d.lock.Unlock()
		d.lock = nil
	}
	err := os.RemoveAll(d.path)
	d.path = ""
	return err
}

// CleanStale removes working directories under tempRoot whose lock can be
// acquired, meaning the owning process is gone. Returns the count removed.
func CleanStale(tempRoot string, logger *slog.Logger) int {
	if logger == nil {
		logger = logging.NewNop()
	}
	entries, err := os.ReadDir(tempRoot)
	if err != nil {
		logger.Debug("stale workdir scan failed", logging.Error(err))
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(tempRoot, entry.Name())
		lock := flock.New(filepath.Join(path, lockName))
		locked, err := lock.TryLock()
		if err != nil || !locked {
			// A live run still holds it, or we cannot tell. Leave it alone.
			continue
		}
		_ = lock.Unlock()
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove stale working directory",
				logging.String("path", path), logging.Error(err))
			continue
		}
		logger.Info("removed stale working directory", logging.String("path", path))
		removed++
	}
	return removed
}
