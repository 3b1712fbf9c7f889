package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"coldstore/internal/logging"
	"coldstore/internal/pipeline"
	"coldstore/internal/source"
)

// Runner executes the pipeline for a single archive.
type Runner interface {
	Run(ctx context.Context, archivePath string) (*pipeline.RunReport, error)
}

// Result pairs one archive with its run outcome.
type Result struct {
	Archive string
	Report  *pipeline.RunReport
	Err     error
}

// Report summarizes a whole batch.
type Report struct {
	Directory string
	Total     int
	Sealed    int
	Failed    int
	Skipped   []source.Skipped
	Results   []Result
	Elapsed   time.Duration
}

// Coordinator fans a directory of archives out to pipeline workers.
type Coordinator struct {
	runner  Runner
	workers int
	logger  *slog.Logger
}

// NewCoordinator returns a Coordinator running at most workers archives
// concurrently. Workers below 1 are clamped to 1.
func NewCoordinator(runner Runner, workers int, logger *slog.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		runner:  runner,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "batch"),
	}
}

// Run discovers archives in dir and processes each through the pipeline.
// The error is non-nil when discovery fails, the directory holds no
// candidates at all, or any archive failed; the report is returned either
// way. Skips are not failures: a directory where every candidate was
// skipped succeeds with warnings.
func (c *Coordinator) Run(ctx context.Context, dir string) (*Report, error) {
	start := time.Now()
	archives, skipped, err := source.Discover(dir)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		c.logger.Warn("archive skipped",
			logging.String("path", skip.Path),
			logging.String("reason", skip.Reason),
		)
	}

	report := &Report{Directory: dir, Total: len(archives), Skipped: skipped}
	if len(archives) == 0 {
		report.Elapsed = time.Since(start)
		if len(skipped) > 0 {
			return report, nil
		}
		return report, fmt.Errorf("no supported archives found in %s", dir)
	}

	c.logger.Info("batch started",
		logging.String("directory", dir),
		logging.Int("archives", len(archives)),
		logging.Int("workers", c.workers),
	)

	results := make([]Result, len(archives))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				archive := archives[idx]
				runReport, runErr := c.runner.Run(ctx, archive.Path)
				results[idx] = Result{Archive: archive.Path, Report: runReport, Err: runErr}
			}
		}()
	}
	for idx := range archives {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	report.Results = results
	for _, result := range results {
		if result.Err == nil {
			report.Sealed++
		} else {
			report.Failed++
		}
	}
	report.Elapsed = time.Since(start)

	c.logger.Info("batch finished",
		logging.Int("sealed", report.Sealed),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", len(report.Skipped)),
		logging.Duration("elapsed", report.Elapsed),
	)
	if report.Failed > 0 {
		return report, fmt.Errorf("%d of %d archives failed", report.Failed, report.Total)
	}
	return report, nil
}
