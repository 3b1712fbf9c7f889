// Package restore streams a sealed artifact back into a directory tree,
// refusing members that would escape the destination. It exists so an
// operator can prove restorability without reaching for external zstd and
// tar binaries.
package restore
