package restore

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"coldstore/internal/compress"
	"coldstore/internal/fileutil"
	"coldstore/internal/logging"
	"coldstore/internal/services"
)

// Summary reports what a restoration produced.
type Summary struct {
	Files   int
	Dirs    int
	Links   int
	Bytes   int64
	Elapsed time.Duration
}

// Restorer extracts sealed artifacts.
type Restorer struct {
	logger *slog.Logger
}

// NewRestorer returns a Restorer.
func NewRestorer(logger *slog.Logger) *Restorer {
	return &Restorer{logger: logging.NewComponentLogger(logger, "restore")}
}

// Options controls one restoration.
type Options struct {
	// Check runs the artifact self-check before writing anything.
	Check bool
	// Force allows extracting into a non-empty destination.
	Force bool
}

// Restore extracts artifactPath into destDir. The destination must be
// empty or absent unless Force is set; members resolving outside destDir
// are rejected outright.
func (r *Restorer) Restore(ctx context.Context, artifactPath, destDir string, opts Options) (*Summary, error) {
	start := time.Now()

	if opts.Check {
		if err := compress.SelfCheck(artifactPath); err != nil {
			return nil, services.Wrap(services.ErrArtifactCorrupt, "restore", "self-check", artifactPath, err)
		}
	}

	if info, err := os.Stat(destDir); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("destination %s is not a directory", destDir)
		}
		empty, err := fileutil.IsEmptyDir(destDir)
		if err != nil {
			return nil, fmt.Errorf("inspect destination: %w", err)
		}
		if !empty && !opts.Force {
			return nil, fmt.Errorf("destination %s is not empty (use --force to extract anyway)", destDir)
		}
	} else if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	file, err := os.Open(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file, zstd.WithDecoderMaxWindow(zstd.MaxWindowSize))
	if err != nil {
		return nil, fmt.Errorf("configure decoder: %w", err)
	}
	defer decoder.Close()

	summary := &Summary{}
	tr := tar.NewReader(decoder)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrArtifactCorrupt, "restore", "read member", artifactPath, err)
		}
		if err := r.writeMember(destDir, header, tr, summary); err != nil {
			return nil, err
		}
	}

	summary.Elapsed = time.Since(start)
	r.logger.Info("artifact restored",
		logging.String("artifact", artifactPath),
		logging.String("destination", destDir),
		logging.Int("files", summary.Files),
		logging.Int64("bytes", summary.Bytes),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// securePath resolves a member name inside destDir, rejecting absolute
// names and traversal.
func securePath(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("member %q escapes the destination", name)
	}
	return filepath.Join(destDir, clean), nil
}

func (r *Restorer) writeMember(destDir string, header *tar.Header, tr *tar.Reader, summary *Summary) error {
	path, err := securePath(destDir, header.Name)
	if err != nil {
		return err
	}
	mode := header.FileInfo().Mode()

	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(path, mode.Perm()|0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", header.Name, err)
		}
		summary.Dirs++
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create parent of %s: %w", header.Name, err)
		}
		out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
		if err != nil {
			return fmt.Errorf("create %s: %w", header.Name, err)
		}
		written, err := io.Copy(out, tr)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", header.Name, err)
		}
		summary.Files++
		summary.Bytes += written
	case tar.TypeSymlink:
		// The link target is recorded verbatim; only the link itself must
		// stay inside the destination.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create parent of %s: %w", header.Name, err)
		}
		if err := os.Symlink(header.Linkname, path); err != nil {
			return fmt.Errorf("link %s: %w", header.Name, err)
		}
		summary.Links++
	default:
		r.logger.Warn("unsupported member type skipped",
			logging.String("member", header.Name),
			logging.Int("type", int(header.Typeflag)),
		)
	}
	return nil
}
