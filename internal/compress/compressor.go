package compress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"coldstore/internal/fileutil"
	"coldstore/internal/logging"
	"coldstore/internal/services"
)

// Settings carries the tunables for one compression run.
type Settings struct {
	// Level is the zstd compression level, 1-22.
	Level int
	// Threads is the encoder worker count; 0 selects one per CPU.
	Threads int
	// LongWindow enables long-range matching with an input-sized window.
	LongWindow bool
	// Checksum enables per-frame content checksums.
	Checksum bool
}

// Compressor produces and self-checks .tar.zst artifacts.
type Compressor struct {
	settings Settings
	logger   *slog.Logger
}

// NewCompressor returns a Compressor with the given settings.
func NewCompressor(settings Settings, logger *slog.Logger) *Compressor {
	return &Compressor{settings: settings, logger: logging.NewComponentLogger(logger, "compressor")}
}

// Compress encodes tarPath into artifactPath and immediately proves the
// round trip with two passes: a full decode of the frame, then a walk of
// the inner tar's header table. A valid frame over a mangled payload
// passes the first and fails the second. On any failure both the tar and
// the artifact are removed so nothing half-written survives; on success
// the intermediate tar is removed. Returns the artifact size.
func (c *Compressor) Compress(ctx context.Context, tarPath, artifactPath string) (int64, error) {
	start := time.Now()
	size, err := c.encode(ctx, tarPath, artifactPath)
	if err != nil {
		fileutil.RemoveQuiet(artifactPath)
		fileutil.RemoveQuiet(tarPath)
		return 0, services.Wrap(services.ErrCompression, "compress", "encode", tarPath, err)
	}

	if err := SelfCheck(artifactPath); err != nil {
		fileutil.RemoveQuiet(artifactPath)
		fileutil.RemoveQuiet(tarPath)
		return 0, services.Wrap(services.ErrArtifactCorrupt, "compress", "self-check", artifactPath, err)
	}

	members, err := InspectTar(artifactPath)
	if err != nil {
		fileutil.RemoveQuiet(artifactPath)
		fileutil.RemoveQuiet(tarPath)
		return 0, services.Wrap(services.ErrArtifactCorrupt, "compress", "inspect payload", artifactPath, err)
	}

	fileutil.RemoveQuiet(tarPath)
	c.logger.Debug("artifact compressed",
		logging.String("artifact", artifactPath),
		logging.Int64("bytes", size),
		logging.Int("members", members),
		logging.Duration("elapsed", time.Since(start)),
	)
	return size, nil
}

func (c *Compressor) encode(ctx context.Context, tarPath, artifactPath string) (int64, error) {
	in, err := os.Open(tarPath)
	if err != nil {
		return 0, fmt.Errorf("open tar: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat tar: %w", err)
	}

	out, err := os.Create(artifactPath)
	if err != nil {
		return 0, fmt.Errorf("create artifact: %w", err)
	}
	defer out.Close()

	opts := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.settings.Level)),
		zstd.WithEncoderCRC(c.settings.Checksum),
	}
	if c.settings.Threads > 0 {
		opts = append(opts, zstd.WithEncoderConcurrency(c.settings.Threads))
	}
	if c.settings.LongWindow {
		opts = append(opts, zstd.WithWindowSize(windowSize(info.Size())))
	}

	encoder, err := zstd.NewWriter(out, opts...)
	if err != nil {
		return 0, fmt.Errorf("configure encoder: %w", err)
	}
	if _, err := copyContext(ctx, encoder, in); err != nil {
		encoder.Close()
		return 0, fmt.Errorf("encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return 0, fmt.Errorf("finalize frame: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("flush artifact: %w", err)
	}

	written, err := os.Stat(artifactPath)
	if err != nil {
		return 0, fmt.Errorf("stat artifact: %w", err)
	}
	return written.Size(), nil
}

// SelfCheck decodes the whole artifact, exercising every frame checksum.
func SelfCheck(artifactPath string) error {
	file, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file, zstd.WithDecoderMaxWindow(zstd.MaxWindowSize))
	if err != nil {
		return fmt.Errorf("configure decoder: %w", err)
	}
	defer decoder.Close()

	if _, err := io.Copy(io.Discard, decoder); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// copyContext copies src to dst, checking for cancellation between chunks.
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 1<<20)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			written, werr := dst.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
