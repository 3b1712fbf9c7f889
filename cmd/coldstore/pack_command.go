package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coldstore/internal/batch"
	"coldstore/internal/config"
	"coldstore/internal/pipeline"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var flat bool
	var level int
	var threads int
	var noLong bool
	var noCheck bool
	var noPar2 bool
	var redundancyPercent int
	var workers int

	cmd := &cobra.Command{
		Use:   "pack <archive|directory>",
		Short: "Transform an archive (or every archive in a directory) into a sealed artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			applyPackOverrides(cmd, cfg, packOverrides{
				outputDir:         outputDir,
				flat:              flat,
				level:             level,
				threads:           threads,
				noLong:            noLong,
				noCheck:           noCheck,
				noPar2:            noPar2,
				redundancyPercent: redundancyPercent,
				workers:           workers,
			})
			if err := cfg.Validate(); err != nil {
				return err
			}

			orchestrator, err := ctx.orchestrator()
			if err != nil {
				return err
			}

			target := args[0]
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", target, err)
			}
			out := cmd.OutOrStdout()

			if info.IsDir() {
				coordinator := batch.NewCoordinator(orchestrator, cfg.Batch.Workers, ctx.logger)
				report, runErr := coordinator.Run(cmd.Context(), target)
				renderBatchReport(out, report)
				return runErr
			}

			report, runErr := orchestrator.Run(cmd.Context(), target)
			renderRunReport(out, report)
			return runErr
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory for sealed artifact sets")
	cmd.Flags().BoolVar(&flat, "flat", false, "Write artifacts directly into the output directory")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "zstd compression level (1-22)")
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "Encoder worker count (0 = one per CPU)")
	cmd.Flags().BoolVar(&noLong, "no-long", false, "Disable the long-range matching window")
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip digest sealing and artifact verification")
	cmd.Flags().BoolVar(&noPar2, "no-par2", false, "Skip PAR2 recovery set generation")
	cmd.Flags().IntVarP(&redundancyPercent, "recovery-percent", "r", 0, "PAR2 recovery percentage (1-100)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent archives in directory mode")
	return cmd
}

type packOverrides struct {
	outputDir         string
	flat              bool
	level             int
	threads           int
	noLong            bool
	noCheck           bool
	noPar2            bool
	redundancyPercent int
	workers           int
}

// applyPackOverrides layers explicitly set flags over the loaded config.
func applyPackOverrides(cmd *cobra.Command, cfg *config.Config, overrides packOverrides) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Output.Dir = overrides.outputDir
	}
	if flags.Changed("flat") {
		cfg.Output.Flat = overrides.flat
	}
	if flags.Changed("level") {
		cfg.Compression.Level = overrides.level
	}
	if flags.Changed("threads") {
		cfg.Compression.Threads = overrides.threads
	}
	if flags.Changed("no-long") {
		cfg.Compression.NoLongWindow = overrides.noLong
	}
	if flags.Changed("no-check") {
		cfg.Compression.NoVerification = overrides.noCheck
	}
	if flags.Changed("no-par2") {
		cfg.Redundancy.Disabled = overrides.noPar2
	}
	if flags.Changed("recovery-percent") {
		cfg.Redundancy.RecoveryPercent = overrides.redundancyPercent
	}
	if flags.Changed("workers") {
		cfg.Batch.Workers = overrides.workers
	}
}

var _ batch.Runner = (*pipeline.Orchestrator)(nil)
