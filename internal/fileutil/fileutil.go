// Package fileutil provides small filesystem helpers shared across stages.
package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DirSize returns the total size in bytes of all regular files under root.
func DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// IsEmptyDir reports whether path is a directory with no entries.
func IsEmptyDir(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// RemoveQuiet removes path (and children) ignoring not-exist errors.
func RemoveQuiet(path string) {
	if path == "" {
		return
	}
	_ = os.RemoveAll(path)
}

// PathExists reports whether path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
