package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// diskMultiplier is the free-space requirement relative to source size:
// room for the working tree, the packaged tar, and the compressed output.
const diskMultiplier = 2.5

// longWindowMinBytes is the memory floor for the widest matching window.
const longWindowMinBytes uint64 = 2_362_232_012 // ~2.2 GiB

// CheckDirectoryAccess verifies path exists (creating it if needed) and is
// a writable directory.
func CheckDirectoryAccess(name, path string) Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has room for the
// run's intermediate and final outputs.
func CheckDiskSpace(path string, sourceSize int64) Result {
	const name = "Disk space"
	free, err := FreeDiskBytes(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", path, err)}
	}
	required := uint64(float64(sourceSize) * diskMultiplier)
	if free < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, need %s",
			humanize.IBytes(free), humanize.IBytes(required))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free, need %s",
		humanize.IBytes(free), humanize.IBytes(required))}
}

// CheckMemory verifies enough memory is available for the long-range
// matching window. Only meaningful when long mode is enabled.
func CheckMemory(longWindow bool) Result {
	const name = "Memory"
	if !longWindow {
		return Result{Name: name, Passed: true, Detail: "long window disabled, no floor"}
	}
	available, err := AvailableMemoryBytes()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("sysinfo: %v", err)}
	}
	if available < longWindowMinBytes {
		return Result{Name: name, Detail: fmt.Sprintf(
			"%s available, need %s for the long-range window (disable with --no-long)",
			humanize.IBytes(available), humanize.IBytes(longWindowMinBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s available", humanize.IBytes(available))}
}

// FreeDiskBytes returns the free bytes on the filesystem holding path.
func FreeDiskBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// AvailableMemoryBytes returns an estimate of memory available to the run.
func AvailableMemoryBytes() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * unit, nil
}
