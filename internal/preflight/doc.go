// Package preflight runs the environment checks that gate every pipeline
// run: output and temp directory access, disk space, memory headroom for
// the long-range compression window, external tool availability, and
// cleanup of stale working directories left by killed runs. A failed
// preflight aborts before any filesystem mutation.
package preflight
