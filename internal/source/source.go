package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Archive is a candidate source archive resolved on disk.
type Archive struct {
	Path string
	Size int64
}

// Base returns the archive name with its extension stripped.
func (a Archive) Base() string {
	return BaseName(a.Path)
}

// Resolve stats path and returns it as an Archive. The path must be a
// regular file with a supported extension.
func Resolve(path string) (Archive, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Archive{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Archive{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return Archive{}, fmt.Errorf("%s is a directory, not an archive", abs)
	}
	if !IsSupported(abs) {
		return Archive{}, fmt.Errorf("%s: unsupported archive format", abs)
	}
	return Archive{Path: abs, Size: info.Size()}, nil
}

// Skipped records a directory entry passed over during discovery.
type Skipped struct {
	Path   string
	Reason string
}

// Discover scans dir (non-recursively) for supported archives. Zero-byte
// files and unreadable entries are skipped and reported, not failed.
func Discover(dir string) ([]Archive, []Skipped, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var archives []Archive
	var skipped []Skipped
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !IsSupported(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: fmt.Sprintf("stat: %v", err)})
			continue
		}
		if info.Size() == 0 {
			skipped = append(skipped, Skipped{Path: path, Reason: "zero-byte file"})
			continue
		}
		archives = append(archives, Archive{Path: path, Size: info.Size()})
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Path < archives[j].Path })
	return archives, skipped, nil
}
