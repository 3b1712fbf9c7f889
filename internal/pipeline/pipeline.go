package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"coldstore/internal/compress"
	"coldstore/internal/config"
	"coldstore/internal/extract"
	"coldstore/internal/fileutil"
	"coldstore/internal/inspect"
	"coldstore/internal/logging"
	"coldstore/internal/packager"
	"coldstore/internal/preflight"
	"coldstore/internal/redundancy"
	"coldstore/internal/seal"
	"coldstore/internal/services"
	"coldstore/internal/services/par2"
	"coldstore/internal/services/sevenzip"
	"coldstore/internal/source"
	"coldstore/internal/workdir"
)

// Orchestrator drives one archive through the full stage sequence.
type Orchestrator struct {
	cfg      *config.Config
	sevenzip sevenzip.Client
	par2     par2.Client
	logger   *slog.Logger
}

// New returns an Orchestrator bound to the given tool clients.
func New(cfg *config.Config, sevenzipClient sevenzip.Client, par2Client par2.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		sevenzip: sevenzipClient,
		par2:     par2Client,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// ArtifactPath returns where the sealed artifact for archivePath lands
// under the configured output layout: a per-archive subdirectory by
// default, the output directory itself in flat mode.
func (o *Orchestrator) ArtifactPath(archivePath string) string {
	base := source.BaseName(archivePath)
	dir := o.cfg.Output.Dir
	if !o.cfg.Output.Flat {
		dir = filepath.Join(dir, base)
	}
	return filepath.Join(dir, base+".tar.zst")
}

// Run executes the pipeline for one archive. The returned report is
// populated for failures too; err is non-nil exactly when the run did not
// seal.
func (o *Orchestrator) Run(ctx context.Context, archivePath string) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{Archive: archivePath, RunID: uuid.NewString()}

	archive, err := source.Resolve(archivePath)
	if err != nil {
		report.Failure = &Failure{Stage: StagePreflight, Kind: services.Kind(err), Message: err.Error()}
		report.Elapsed = time.Since(start)
		return report, err
	}
	report.Archive = archive.Path
	report.SourceSize = archive.Size
	report.ArtifactPath = o.ArtifactPath(archive.Path)

	ctx = services.WithArchive(ctx, filepath.Base(archive.Path))
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("pipeline started",
		logging.Int64("source_bytes", archive.Size),
		logging.String("artifact", report.ArtifactPath),
	)

	snapshot, err := o.preflight(report, archive, logger)
	if err != nil {
		return o.fail(report, logger, StagePreflight, snapshot, start, err)
	}

	wd, err := workdir.Create(o.cfg.Paths.TempDir, report.RunID)
	if err != nil {
		err = services.Wrap(services.ErrPermissions, "preflight", "working directory", o.cfg.Paths.TempDir, err)
		return o.fail(report, logger, StagePreflight, snapshot, start, err)
	}
	defer wd.Release()

	stageEnv := func(stage Stage) (context.Context, *slog.Logger) {
		sctx := logging.WithStage(ctx, string(stage))
		return sctx, logging.WithContext(sctx, o.logger)
	}

	// Inspect.
	topology, err := timed(report, StageInspect, func() (inspect.Topology, error) {
		sctx, slogger := stageEnv(StageInspect)
		return inspect.NewInspector(o.sevenzip, slogger).Inspect(sctx, archive)
	})
	if err != nil {
		return o.fail(report, logger, StageInspect, snapshot, start, err)
	}
	report.Topology = topology.String()

	// Extract.
	tree, err := timed(report, StageExtract, func() (string, error) {
		sctx, slogger := stageEnv(StageExtract)
		return extract.NewExtractor(o.sevenzip, slogger).Extract(sctx, archive, topology, wd.Path())
	})
	if err != nil {
		return o.fail(report, logger, StageExtract, snapshot, start, err)
	}

	// Package.
	var members int
	tarPath, err := timed(report, StagePackage, func() (string, error) {
		sctx, slogger := stageEnv(StagePackage)
		path, count, err := packager.NewPackager(slogger).Package(sctx, tree, wd.Path())
		members = count
		return path, err
	})
	if err != nil {
		return o.fail(report, logger, StagePackage, snapshot, start, err)
	}
	report.Members = members

	// Compress into the final location.
	if err := os.MkdirAll(filepath.Dir(report.ArtifactPath), 0o755); err != nil {
		err = services.Wrap(services.ErrPermissions, "compress", "create output directory", filepath.Dir(report.ArtifactPath), err)
		return o.fail(report, logger, StageCompress, snapshot, start, err)
	}
	settings := compress.Settings{
		Level:      o.cfg.Compression.Level,
		Threads:    o.cfg.Compression.Threads,
		LongWindow: o.cfg.Compression.LongWindow(),
		Checksum:   o.cfg.Compression.Checksum(),
	}
	artifactSize, err := timed(report, StageCompress, func() (int64, error) {
		sctx, slogger := stageEnv(StageCompress)
		return compress.NewCompressor(settings, slogger).Compress(sctx, tarPath, report.ArtifactPath)
	})
	if err != nil {
		return o.fail(report, logger, StageCompress, snapshot, start, err)
	}
	report.ArtifactSize = artifactSize

	// Seal.
	if !o.cfg.Compression.NoVerification {
		sidecars, err := timed(report, StageSeal, func() ([]string, error) {
			sctx, slogger := stageEnv(StageSeal)
			return seal.NewSealer(slogger).Seal(sctx, report.ArtifactPath)
		})
		if err != nil {
			return o.fail(report, logger, StageSeal, snapshot, start, err)
		}
		report.Sidecars = sidecars
	}

	// Redundancy.
	if o.cfg.Redundancy.Enabled() {
		files, err := timed(report, StageRedundancy, func() ([]string, error) {
			sctx, slogger := stageEnv(StageRedundancy)
			manager := redundancy.NewManager(o.par2, o.cfg.Redundancy.RecoveryPercent, slogger)
			return manager.Generate(sctx, report.ArtifactPath)
		})
		if err != nil {
			return o.fail(report, logger, StageRedundancy, snapshot, start, err)
		}
		report.RecoveryFiles = files
	}

	report.Elapsed = time.Since(start)
	logger.Info("pipeline sealed",
		logging.Int64("artifact_bytes", report.ArtifactSize),
		logging.Int("members", report.Members),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// preflight gates the run and refuses to overwrite an existing artifact set.
func (o *Orchestrator) preflight(report *RunReport, archive source.Archive, logger *slog.Logger) (*preflight.Snapshot, error) {
	stageStart := time.Now()
	snapshot, err := preflight.Run(o.cfg, preflight.Options{
		SourceSize:     archive.Size,
		LongWindow:     o.cfg.Compression.LongWindow(),
		NeedSevenZip:   true,
		NeedPar2:       o.cfg.Redundancy.Enabled(),
		CleanStaleTemp: true,
	}, logger)
	if err == nil {
		if _, statErr := os.Stat(report.ArtifactPath); statErr == nil {
			err = fmt.Errorf("output already exists: %s", report.ArtifactPath)
		}
	}
	report.Stages = append(report.Stages, StageTiming{Stage: StagePreflight, Duration: time.Since(stageStart), Passed: err == nil})
	return snapshot, err
}

// timed runs one stage, recording its duration and outcome on the report.
func timed[T any](report *RunReport, stage Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	value, err := fn()
	report.Stages = append(report.Stages, StageTiming{Stage: stage, Duration: time.Since(start), Passed: err == nil})
	return value, err
}

// fail finalizes the report for a failed run and removes every output the
// run produced. The working directory (tree and tar) is released by the
// caller's defer; this removes the externally visible files.
func (o *Orchestrator) fail(report *RunReport, logger *slog.Logger, stage Stage, snapshot *preflight.Snapshot, start time.Time, err error) (*RunReport, error) {
	// Preflight failures produced nothing, and may have refused the run
	// precisely because an earlier run's outputs exist. Leave those alone.
	if stage != StagePreflight {
		o.removeOutputs(report)
	}
	failure := &Failure{Stage: stage, Kind: services.Kind(err), Message: err.Error()}
	if snapshot != nil {
		failure.FreeDiskBytes = snapshot.FreeDiskBytes
		failure.AvailableMemoryBytes = snapshot.AvailableMemoryBytes
	}
	report.Failure = failure
	report.Elapsed = time.Since(start)
	logger.Error("pipeline failed",
		logging.String("stage", string(stage)),
		logging.String("kind", failure.Kind),
		logging.Error(err),
		logging.Uint64("free_disk_bytes", failure.FreeDiskBytes),
		logging.Uint64("available_memory_bytes", failure.AvailableMemoryBytes),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, err
}

func (o *Orchestrator) removeOutputs(report *RunReport) {
	if report.ArtifactPath == "" {
		return
	}
	fileutil.RemoveQuiet(report.ArtifactPath)
	for _, algorithm := range seal.Algorithms() {
		fileutil.RemoveQuiet(seal.SidecarPath(report.ArtifactPath, algorithm))
	}
	dir := filepath.Dir(report.ArtifactPath)
	base := filepath.Base(report.ArtifactPath)
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() && strings.HasPrefix(name, base) && strings.HasSuffix(name, ".par2") {
				fileutil.RemoveQuiet(filepath.Join(dir, name))
			}
		}
	}
	// A per-archive output directory that ends up empty is removed too.
	if !o.cfg.Output.Flat {
		if empty, err := fileutil.IsEmptyDir(dir); err == nil && empty {
			fileutil.RemoveQuiet(dir)
		}
	}
}
