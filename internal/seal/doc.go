// Package seal computes the artifact's dual digests and writes them as
// sidecar files in the coreutils two-space format. The two algorithms are
// independent witnesses: a verifier trusts the artifact only when both
// agree. Every sidecar is re-read and re-derived immediately after
// writing, so a seal that lands on disk is already proven round-trippable.
package seal
