package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coldstore/internal/config"
	"coldstore/internal/logging"
	"coldstore/internal/seal"
	"coldstore/internal/services"
	"coldstore/internal/services/par2"
	"coldstore/internal/services/sevenzip"
)

// fakeSevenZip simulates archive listing and extraction from an in-memory
// member set.
type fakeSevenZip struct {
	entries    []sevenzip.Entry
	files      map[string]string
	extractErr error
}

func (f *fakeSevenZip) List(context.Context, string) ([]sevenzip.Entry, error) {
	return f.entries, nil
}

func (f *fakeSevenZip) Extract(_ context.Context, _ string, destDir string) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	for rel, content := range f.files {
		path := filepath.Join(destDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakePar2 struct {
	outcome par2.Outcome
}

func (f *fakePar2) Create(_ context.Context, filePath string, _ int) ([]string, error) {
	files := []string{filePath + ".par2", filePath + ".vol000+10.par2"}
	for _, path := range files {
		if err := os.WriteFile(path, []byte("par2"), 0o644); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (f *fakePar2) Verify(context.Context, string) (par2.Outcome, string, error) {
	return f.outcome, "", nil
}

func (f *fakePar2) Repair(context.Context, string) (string, error) { return "", nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Paths.TempDir = t.TempDir()
	cfg.Compression.Level = 3
	// Any binary guaranteed on PATH keeps the tool preflight honest
	// without requiring 7z/par2 on the test machine.
	cfg.Tools.SevenZipBinary = "sh"
	cfg.Tools.Par2Binary = "sh"
	return cfg
}

func writeSourceArchive(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("pretend archive bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func scatteredClient() *fakeSevenZip {
	return &fakeSevenZip{
		entries: []sevenzip.Entry{{Path: "a.txt", Size: 5}, {Path: "b.txt", Size: 5}},
		files:   map[string]string{"a.txt": "aaaaa", "b.txt": "bbbbb"},
	}
}

func TestRunSealsScatteredArchive(t *testing.T) {
	cfg := testConfig(t)
	archive := writeSourceArchive(t, "bundle.7z")
	orchestrator := New(cfg, scatteredClient(), &fakePar2{outcome: par2.OutcomeIntact}, logging.NewNop())

	report, err := orchestrator.Run(t.Context(), archive)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Sealed() {
		t.Fatal("report should be sealed")
	}
	if report.Topology != "scattered" {
		t.Errorf("topology = %s, want scattered", report.Topology)
	}

	wantArtifact := filepath.Join(cfg.Output.Dir, "bundle", "bundle.tar.zst")
	if report.ArtifactPath != wantArtifact {
		t.Errorf("artifact = %s, want %s", report.ArtifactPath, wantArtifact)
	}
	if _, err := os.Stat(wantArtifact); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
	for _, algorithm := range seal.Algorithms() {
		if _, err := os.Stat(seal.SidecarPath(wantArtifact, algorithm)); err != nil {
			t.Errorf("%s sidecar missing: %v", algorithm, err)
		}
	}
	if len(report.RecoveryFiles) == 0 {
		t.Error("recovery files should be reported")
	}

	// Every stage ran, every stage passed, every stage was timed.
	wantStages := []Stage{StagePreflight, StageInspect, StageExtract, StagePackage, StageCompress, StageSeal, StageRedundancy}
	if len(report.Stages) != len(wantStages) {
		t.Fatalf("stages = %+v, want %v", report.Stages, wantStages)
	}
	for i, timing := range report.Stages {
		if timing.Stage != wantStages[i] {
			t.Errorf("stage %d = %s, want %s", i, timing.Stage, wantStages[i])
		}
		if !timing.Passed {
			t.Errorf("stage %s should have passed", timing.Stage)
		}
	}

	// The working directory is gone.
	entries, err := os.ReadDir(cfg.Paths.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir should be empty after the run, found %d entries", len(entries))
	}
}

func TestRunFlatLayout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Flat = true
	archive := writeSourceArchive(t, "bundle.7z")
	orchestrator := New(cfg, scatteredClient(), &fakePar2{outcome: par2.OutcomeIntact}, logging.NewNop())

	report, err := orchestrator.Run(t.Context(), archive)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ArtifactPath != filepath.Join(cfg.Output.Dir, "bundle.tar.zst") {
		t.Errorf("flat artifact = %s", report.ArtifactPath)
	}
}

func TestRunExtractionFailureLeavesNoFootprint(t *testing.T) {
	cfg := testConfig(t)
	archive := writeSourceArchive(t, "bundle.7z")
	client := scatteredClient()
	client.extractErr = errors.New("archive is corrupt")
	orchestrator := New(cfg, client, &fakePar2{outcome: par2.OutcomeIntact}, logging.NewNop())

	report, err := orchestrator.Run(t.Context(), archive)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("err = %v, want extraction failure", err)
	}
	if report.Failure == nil || report.Failure.Stage != StageExtract {
		t.Fatalf("failure = %+v, want extract stage", report.Failure)
	}
	if report.Failure.Kind != "ExtractionFailed" {
		t.Errorf("kind = %s, want ExtractionFailed", report.Failure.Kind)
	}

	// No output footprint: artifact dir and temp dir are clean.
	if entries, _ := os.ReadDir(cfg.Output.Dir); len(entries) != 0 {
		t.Errorf("output dir should be empty, found %d entries", len(entries))
	}
	if entries, _ := os.ReadDir(cfg.Paths.TempDir); len(entries) != 0 {
		t.Errorf("temp dir should be empty, found %d entries", len(entries))
	}
}

func TestRunRepairableRedundancyRemovesOutputs(t *testing.T) {
	cfg := testConfig(t)
	archive := writeSourceArchive(t, "bundle.7z")
	orchestrator := New(cfg, scatteredClient(), &fakePar2{outcome: par2.OutcomeRepairable}, logging.NewNop())

	report, err := orchestrator.Run(t.Context(), archive)
	if !errors.Is(err, services.ErrRedundancyRepairable) {
		t.Fatalf("err = %v, want repairable redundancy failure", err)
	}
	if report.Failure.Stage != StageRedundancy {
		t.Errorf("failure stage = %s", report.Failure.Stage)
	}
	if _, statErr := os.Stat(report.ArtifactPath); !os.IsNotExist(statErr) {
		t.Error("artifact should be removed when redundancy fails")
	}
	for _, algorithm := range seal.Algorithms() {
		if _, statErr := os.Stat(seal.SidecarPath(report.ArtifactPath, algorithm)); !os.IsNotExist(statErr) {
			t.Errorf("%s sidecar should be removed when redundancy fails", algorithm)
		}
	}
}

func TestRunRefusesToOverwriteExistingArtifact(t *testing.T) {
	cfg := testConfig(t)
	archive := writeSourceArchive(t, "bundle.7z")
	existing := filepath.Join(cfg.Output.Dir, "bundle", "bundle.tar.zst")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("previous run"), 0o644); err != nil {
		t.Fatal(err)
	}

	orchestrator := New(cfg, scatteredClient(), &fakePar2{outcome: par2.OutcomeIntact}, logging.NewNop())
	_, err := orchestrator.Run(t.Context(), archive)
	if err == nil {
		t.Fatal("existing artifact should refuse the run")
	}
	raw, readErr := os.ReadFile(existing)
	if readErr != nil || string(raw) != "previous run" {
		t.Error("pre-existing artifact must survive untouched")
	}
}

func TestRunSkipsSealAndRedundancyWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Compression.NoVerification = true
	cfg.Redundancy.Disabled = true
	archive := writeSourceArchive(t, "bundle.7z")
	orchestrator := New(cfg, scatteredClient(), &fakePar2{outcome: par2.OutcomeIntact}, logging.NewNop())

	report, err := orchestrator.Run(t.Context(), archive)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sidecars) != 0 || len(report.RecoveryFiles) != 0 {
		t.Error("disabled stages should produce nothing")
	}
	for _, timing := range report.Stages {
		if timing.Stage == StageSeal || timing.Stage == StageRedundancy {
			t.Errorf("stage %s should not have run", timing.Stage)
		}
	}
}
