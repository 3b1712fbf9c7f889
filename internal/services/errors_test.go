package services

import (
	"errors"
	"testing"
)

func TestWrapCarriesMarkerAndDetail(t *testing.T) {
	cause := errors.New("exit status 2")
	err := Wrap(ErrExtraction, "extract", "unpack archive", "/in/a.7z", cause)
	if !errors.Is(err, ErrExtraction) {
		t.Fatal("wrapped error should match its marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should preserve the cause")
	}
	want := "extraction failed: extract: unpack archive: /in/a.7z: exit status 2"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrDiskSpace, "preflight", "disk space", "1 GiB free", nil)
	if !errors.Is(err, ErrDiskSpace) {
		t.Fatal("marker should survive without a cause")
	}
	if err.Error() != "insufficient disk space: preflight: disk space: 1 GiB free" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Wrap(ErrInspection, "inspect", "", "", nil), "InspectionFailed"},
		{Wrap(ErrPackageValidation, "package", "", "", nil), "PackageValidationFailed"},
		{Wrap(ErrArtifactCorrupt, "compress", "", "", nil), "CompressedArtifactCorrupt"},
		{Wrap(ErrRedundancy, "redundancy", "", "", nil), "RedundancyFailed"},
		{Wrap(ErrToolUnavailable, "preflight", "", "", nil), "ToolUnavailable"},
		{errors.New("something else"), "failed"},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRepairableClassifiesBeforeRedundancy(t *testing.T) {
	err := Wrap(ErrRedundancyRepairable, "redundancy", "verify set", "", nil)
	if Kind(err) != "RedundancyFailed (repairable)" {
		t.Errorf("Kind = %q", Kind(err))
	}
	if !errors.Is(err, ErrRedundancy) {
		t.Error("repairable should still match the redundancy marker")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithArchive(t.Context(), "bundle.7z")
	ctx = WithStage(ctx, "compress")
	ctx = WithRunID(ctx, "run-42")

	if archive, ok := ArchiveFromContext(ctx); !ok || archive != "bundle.7z" {
		t.Errorf("archive = %q, %v", archive, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "compress" {
		t.Errorf("stage = %q, %v", stage, ok)
	}
	if runID, ok := RunIDFromContext(ctx); !ok || runID != "run-42" {
		t.Errorf("run id = %q, %v", runID, ok)
	}
	if _, ok := ArchiveFromContext(t.Context()); ok {
		t.Error("empty context should carry no archive")
	}
}
