package packager

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"coldstore/internal/fileutil"
	"coldstore/internal/logging"
	"coldstore/internal/services"
)

// Packager serializes a working tree into a deterministic tar archive.
type Packager struct {
	logger *slog.Logger
}

// NewPackager returns a Packager.
func NewPackager(logger *slog.Logger) *Packager {
	return &Packager{logger: logging.NewComponentLogger(logger, "packager")}
}

// Package writes tree into a tar file next to it in workDir, validates the
// result by walking its full header table, and returns the tar path with
// its member count. A failure at any point removes the partial tar.
func (p *Packager) Package(ctx context.Context, tree, workDir string) (string, int, error) {
	tarPath := filepath.Join(workDir, filepath.Base(tree)+".tar")

	members, err := BuildTar(ctx, tree, tarPath)
	if err != nil {
		fileutil.RemoveQuiet(tarPath)
		return "", 0, services.Wrap(services.ErrPackaging, "package", "build tar", tree, err)
	}

	validated, err := ValidateTar(tarPath)
	if err != nil {
		fileutil.RemoveQuiet(tarPath)
		return "", 0, services.Wrap(services.ErrPackageValidation, "package", "validate tar", tarPath, err)
	}
	if validated != members {
		fileutil.RemoveQuiet(tarPath)
		return "", 0, services.Wrap(services.ErrPackageValidation, "package", "validate tar",
			fmt.Sprintf("%s: wrote %d members, read back %d", tarPath, members, validated), nil)
	}

	p.logger.Debug("tree packaged",
		logging.String("tar", tarPath),
		logging.Int("members", members),
	)
	return tarPath, members, nil
}

// BuildTar writes tree as a PAX tar at tarPath and returns the member
// count. Members are ordered by relative path, ownership is normalized to
// uid/gid 0 with root/root names, and all timestamps are the Unix epoch.
func BuildTar(ctx context.Context, tree, tarPath string) (int, error) {
	paths, err := collectPaths(tree)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(tarPath)
	if err != nil {
		return 0, fmt.Errorf("create tar: %w", err)
	}
	defer out.Close()

	tw := tar.NewWriter(out)
	written := 0
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := writeMember(tw, tree, rel); err != nil {
			return written, err
		}
		written++
	}
	if err := tw.Close(); err != nil {
		return written, fmt.Errorf("finalize tar: %w", err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("flush tar: %w", err)
	}
	return written, nil
}

// ValidateTar walks every header of the archive and returns the member
// count. Any decode error marks the archive invalid.
func ValidateTar(tarPath string) (int, error) {
	file, err := os.Open(tarPath)
	if err != nil {
		return 0, fmt.Errorf("open tar: %w", err)
	}
	defer file.Close()

	tr := tar.NewReader(file)
	count := 0
	for {
		if _, err := tr.Next(); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return count, fmt.Errorf("read header %d: %w", count+1, err)
		}
		count++
	}
}

// collectPaths walks tree and returns every member's slash-separated
// relative path, sorted. The tree root itself is not a member.
func collectPaths(tree string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(tree, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == tree {
			return nil
		}
		rel, err := filepath.Rel(tree, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func writeMember(tw *tar.Writer, tree, rel string) error {
	path := filepath.Join(tree, filepath.FromSlash(rel))
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("lstat %s: %w", rel, err)
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return fmt.Errorf("readlink %s: %w", rel, err)
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("header %s: %w", rel, err)
	}
	header.Format = tar.FormatPAX
	header.Name = rel
	if info.IsDir() {
		header.Name += "/"
	}
	header.Uid = 0
	header.Gid = 0
	header.Uname = "root"
	header.Gname = "root"
	header.ModTime = time.Unix(0, 0)
	header.AccessTime = time.Time{}
	header.ChangeTime = time.Time{}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header %s: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", rel, err)
	}
	defer file.Close()
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("copy %s: %w", rel, err)
	}
	return nil
}
