// Package source describes the archives the pipeline accepts: the supported
// container and single-stream formats, extension-aware base name derivation,
// and non-recursive discovery of candidates inside a batch directory.
package source
