// Package redundancy drives PAR2 recovery set generation and the
// post-generation verification that proves the set actually covers the
// artifact. A set that verifies as merely repairable is treated as a
// failure: recovery data born needing repair protects nothing.
package redundancy
