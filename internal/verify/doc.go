// Package verify re-proves a sealed artifact without extracting it. Five
// independent layers run in order of increasing depth: the zstd frame
// checksums, the two digest sidecars, the PAR2 recovery set, and a full
// walk of the inner tar. Missing sidecars or recovery files degrade a
// layer to skipped with a warning; only a contradicted layer fails the
// artifact.
package verify
