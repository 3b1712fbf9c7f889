// Package compress turns the deterministic tar into the final .tar.zst
// artifact and provides the decode-side checks used during sealing and
// verification. Compression runs in-process with frame checksums enabled;
// the long-range matching window is sized from the tar being compressed.
package compress
