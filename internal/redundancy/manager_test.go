package redundancy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coldstore/internal/services"
	"coldstore/internal/services/par2"
)

// fakePar2 materializes a fake recovery set and returns a scripted verify
// outcome.
type fakePar2 struct {
	createErr error
	outcome   par2.Outcome
	verifyErr error
	repairOut string
}

func (f *fakePar2) Create(_ context.Context, filePath string, _ int) ([]string, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	files := []string{filePath + ".par2", filePath + ".vol000+10.par2"}
	for _, path := range files {
		if err := os.WriteFile(path, []byte("par2"), 0o644); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (f *fakePar2) Verify(context.Context, string) (par2.Outcome, string, error) {
	return f.outcome, "verify output", f.verifyErr
}

func (f *fakePar2) Repair(context.Context, string) (string, error) {
	return f.repairOut, nil
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.tar.zst")
	if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateIntactSet(t *testing.T) {
	artifact := writeArtifact(t)
	manager := NewManager(&fakePar2{outcome: par2.OutcomeIntact}, 10, nil)
	files, err := manager.Generate(t.Context(), artifact)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want descriptor plus volume", files)
	}
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("recovery file missing: %v", err)
		}
	}
}

func TestGenerateRepairableSetIsFatalAndRemoved(t *testing.T) {
	artifact := writeArtifact(t)
	manager := NewManager(&fakePar2{outcome: par2.OutcomeRepairable}, 10, nil)
	_, err := manager.Generate(t.Context(), artifact)
	if !errors.Is(err, services.ErrRedundancyRepairable) {
		t.Fatalf("repairable fresh set should be its own failure kind, got %v", err)
	}
	if !errors.Is(err, services.ErrRedundancy) {
		t.Error("repairable should still classify under redundancy")
	}
	if _, statErr := os.Stat(DescriptorPath(artifact)); !os.IsNotExist(statErr) {
		t.Error("failed generation should remove the recovery set")
	}
}

func TestGenerateFailedVerificationRemovesSet(t *testing.T) {
	artifact := writeArtifact(t)
	manager := NewManager(&fakePar2{outcome: par2.OutcomeFailed}, 10, nil)
	_, err := manager.Generate(t.Context(), artifact)
	if !errors.Is(err, services.ErrRedundancy) {
		t.Fatalf("error should classify as redundancy, got %v", err)
	}
	if errors.Is(err, services.ErrRedundancyRepairable) {
		t.Error("failed outcome must not read as repairable")
	}
	if _, statErr := os.Stat(DescriptorPath(artifact)); !os.IsNotExist(statErr) {
		t.Error("failed generation should remove the recovery set")
	}
}

func TestVerifySetOutcomeMapping(t *testing.T) {
	artifact := writeArtifact(t)
	cases := []struct {
		outcome    par2.Outcome
		wantErr    error
		wantNilErr bool
	}{
		{outcome: par2.OutcomeIntact, wantNilErr: true},
		{outcome: par2.OutcomeRepairable, wantErr: services.ErrRedundancyRepairable},
		{outcome: par2.OutcomeFailed, wantErr: services.ErrRedundancy},
	}
	for _, tc := range cases {
		manager := NewManager(&fakePar2{outcome: tc.outcome}, 10, nil)
		outcome, _, err := manager.VerifySet(t.Context(), artifact)
		if outcome != tc.outcome {
			t.Errorf("outcome = %v, want %v", outcome, tc.outcome)
		}
		if tc.wantNilErr {
			if err != nil {
				t.Errorf("intact should verify clean, got %v", err)
			}
			continue
		}
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("outcome %v: err = %v, want %v", tc.outcome, err, tc.wantErr)
		}
	}
}
