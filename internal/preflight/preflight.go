package preflight

import (
	"errors"
	"log/slog"
	"strings"

	"coldstore/internal/config"
	"coldstore/internal/deps"
	"coldstore/internal/logging"
	"coldstore/internal/services"
	"coldstore/internal/workdir"
)

// Snapshot captures the environment diagnostics attached to failure reports
// so transient resource problems can be told apart from data corruption.
type Snapshot struct {
	FreeDiskBytes        uint64
	AvailableMemoryBytes uint64
	Results              []Result
}

// Options selects which checks apply to the run.
type Options struct {
	SourceSize     int64
	LongWindow     bool
	NeedSevenZip   bool
	NeedPar2       bool
	CleanStaleTemp bool
}

// Run executes all applicable preflight checks. It returns the snapshot for
// reporting and a taxonomy-tagged error when any required check failed.
func Run(cfg *config.Config, opts Options, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	if opts.CleanStaleTemp {
		workdir.CleanStale(cfg.Paths.TempDir, logger)
	}

	snapshot := &Snapshot{}
	if free, err := FreeDiskBytes(cfg.Output.Dir); err == nil {
		snapshot.FreeDiskBytes = free
	}
	if available, err := AvailableMemoryBytes(); err == nil {
		snapshot.AvailableMemoryBytes = available
	}

	outputAccess := CheckDirectoryAccess("Output directory", cfg.Output.Dir)
	tempAccess := CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir)
	diskSpace := CheckDiskSpace(cfg.Output.Dir, opts.SourceSize)
	memory := CheckMemory(opts.LongWindow)
	tools := checkTools(cfg, opts)
	snapshot.Results = append(snapshot.Results, outputAccess, tempAccess, diskSpace, memory, tools)

	for _, result := range snapshot.Results {
		attrs := logging.Args(
			logging.String("check", result.Name),
			logging.Bool("passed", result.Passed),
			logging.String("detail", result.Detail),
		)
		if result.Passed {
			logger.Debug("preflight check", attrs...)
		} else {
			logger.Error("preflight check failed", attrs...)
		}
	}

	switch {
	case !outputAccess.Passed:
		return snapshot, services.Wrap(services.ErrPermissions, "preflight", "output directory", outputAccess.Detail, nil)
	case !tempAccess.Passed:
		return snapshot, services.Wrap(services.ErrPermissions, "preflight", "temp directory", tempAccess.Detail, nil)
	case !diskSpace.Passed:
		return snapshot, services.Wrap(services.ErrDiskSpace, "preflight", "disk space", diskSpace.Detail, nil)
	case !tools.Passed:
		return snapshot, services.Wrap(services.ErrToolUnavailable, "preflight", "external tools", tools.Detail, nil)
	case !memory.Passed:
		return snapshot, errors.New("preflight: memory: " + memory.Detail)
	}
	return snapshot, nil
}

func checkTools(cfg *config.Config, opts Options) Result {
	const name = "External tools"
	var requirements []deps.Requirement
	if opts.NeedSevenZip {
		requirements = append(requirements, deps.Requirement{
			Name:        "7-Zip",
			Command:     cfg.Tools.SevenZipBinary,
			Description: "Required for archive listing and extraction",
		})
	}
	if opts.NeedPar2 {
		requirements = append(requirements, deps.Requirement{
			Name:        "PAR2",
			Command:     cfg.Tools.Par2Binary,
			Description: "Required for redundancy set generation",
		})
	}
	if len(requirements) == 0 {
		return Result{Name: name, Passed: true, Detail: "none required"}
	}

	missing := deps.MissingRequired(deps.CheckBinaries(requirements))
	if len(missing) == 0 {
		return Result{Name: name, Passed: true, Detail: "all available"}
	}
	details := make([]string, 0, len(missing))
	for _, status := range missing {
		details = append(details, status.Name+": "+status.Detail)
	}
	return Result{Name: name, Detail: strings.Join(details, "; ")}
}
