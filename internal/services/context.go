package services

import "context"

type contextKey string

const (
	archiveKey contextKey = "archive"
	stageKey   contextKey = "stage"
	runIDKey   contextKey = "run_id"
)

// WithArchive stores the source archive name in the context.
func WithArchive(ctx context.Context, archive string) context.Context {
	return context.WithValue(ctx, archiveKey, archive)
}

// ArchiveFromContext returns the archive name stored in the context, if any.
func ArchiveFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(archiveKey).(string)
	return value, ok && value != ""
}

// WithStage stores the pipeline stage name in the context.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name stored in the context, if any.
func StageFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(stageKey).(string)
	return value, ok && value != ""
}

// WithRunID stores the pipeline run identifier in the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run identifier stored in the context, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(runIDKey).(string)
	return value, ok && value != ""
}
