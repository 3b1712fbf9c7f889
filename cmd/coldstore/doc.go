// Command coldstore turns extractable archives into sealed cold-storage
// artifacts: a deterministic tar compressed with zstd, dual digest
// sidecars, and a PAR2 recovery set, plus the verification and
// restoration commands that prove the artifacts later.
package main
