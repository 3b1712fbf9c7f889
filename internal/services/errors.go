package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the failure taxonomy. Every stage error wraps exactly
// one of these so the orchestrator and reports can classify failures with
// errors.Is instead of string matching.
var (
	ErrInspection        = errors.New("inspection failed")
	ErrExtraction        = errors.New("extraction failed")
	ErrPackaging         = errors.New("packaging failed")
	ErrPackageValidation = errors.New("package validation failed")
	ErrCompression       = errors.New("compression failed")
	ErrArtifactCorrupt   = errors.New("compressed artifact corrupt")
	ErrSeal              = errors.New("seal failed")
	ErrRedundancy        = errors.New("redundancy failed")
	ErrToolUnavailable   = errors.New("external tool unavailable")
	ErrDiskSpace         = errors.New("insufficient disk space")
	ErrPermissions       = errors.New("insufficient permissions")
)

// ErrRedundancyRepairable marks the distinct sub-case where the redundancy
// set itself reports recoverable damage. It still classifies as ErrRedundancy.
var ErrRedundancyRepairable = fmt.Errorf("%w: repair required", ErrRedundancy)

// Wrap builds an error message that includes stage context while tagging it
// with the provided taxonomy marker for later classification.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = errors.New("stage failure")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to the taxonomy name used in reports. Unknown errors
// report as "failed".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRedundancyRepairable):
		return "RedundancyFailed (repairable)"
	case errors.Is(err, ErrInspection):
		return "InspectionFailed"
	case errors.Is(err, ErrExtraction):
		return "ExtractionFailed"
	case errors.Is(err, ErrPackaging):
		return "PackagingFailed"
	case errors.Is(err, ErrPackageValidation):
		return "PackageValidationFailed"
	case errors.Is(err, ErrCompression):
		return "CompressionFailed"
	case errors.Is(err, ErrArtifactCorrupt):
		return "CompressedArtifactCorrupt"
	case errors.Is(err, ErrSeal):
		return "SealFailed"
	case errors.Is(err, ErrRedundancy):
		return "RedundancyFailed"
	case errors.Is(err, ErrToolUnavailable):
		return "ToolUnavailable"
	case errors.Is(err, ErrDiskSpace):
		return "InsufficientDiskSpace"
	case errors.Is(err, ErrPermissions):
		return "InsufficientPermissions"
	default:
		return "failed"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
