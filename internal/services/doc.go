// Package services holds the shared error taxonomy and run context helpers
// used by every pipeline stage, plus client subpackages wrapping the
// external tools coldstore shells out to.
package services
