// Package packager builds the deterministic tar stage: a PAX archive whose
// byte content depends only on member paths, bytes, types, and permission
// bits. Ownership, timestamps, and traversal order are normalized so two
// packagings of identical trees produce identical archives.
package packager
