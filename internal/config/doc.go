// Package config loads and validates the coldstore TOML configuration.
// A single immutable Config is constructed at startup and passed explicitly
// to every component; nothing reads ambient process state after that.
package config
