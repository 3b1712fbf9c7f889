package main

import (
	"testing"

	"coldstore/internal/config"
)

func TestApplyPackOverridesOnlyTouchesChangedFlags(t *testing.T) {
	ctx := newCommandContext(new(string), new(string), new(string))
	cmd := newPackCommand(ctx)
	if err := cmd.Flags().Set("level", "22"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("no-par2", "true"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	applyPackOverrides(cmd, cfg, packOverrides{level: 22, noPar2: true, workers: 9})

	if cfg.Compression.Level != 22 {
		t.Errorf("level = %d, want 22", cfg.Compression.Level)
	}
	if cfg.Redundancy.Enabled() {
		t.Error("no-par2 should disable redundancy")
	}
	// Workers flag was never set, so the config default must survive.
	if cfg.Batch.Workers != config.Default().Batch.Workers {
		t.Errorf("workers = %d, want untouched default", cfg.Batch.Workers)
	}
	if !cfg.Compression.LongWindow() || !cfg.Compression.Checksum() {
		t.Error("unset flags must leave long window and checksum enabled")
	}
}

func TestPackRejectsMissingTarget(t *testing.T) {
	target := t.TempDir() + "/absent.7z"
	if _, err := runCommand(t, "pack", target); err == nil {
		t.Fatal("missing target should fail")
	}
}
