package source

import (
	"path/filepath"
	"strings"
)

// supportedExtensions lists every extension the pipeline accepts, compound
// extensions first so ".tar.gz" matches before ".gz".
var supportedExtensions = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".7z",
	".zip",
	".rar",
	".tar",
	".tgz",
	".tbz2",
	".txz",
	".gz",
	".bz2",
	".xz",
}

// SupportedExtensions returns the accepted archive extensions in match order.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// matchExtension returns the longest supported extension that path carries,
// or "" when the path is not a recognized archive.
func matchExtension(path string) string {
	lower := strings.ToLower(filepath.Base(path))
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return ext
		}
	}
	return ""
}

// IsSupported reports whether path carries a supported archive extension.
func IsSupported(path string) bool {
	return matchExtension(path) != ""
}

// BaseName returns the archive file name with its archive extension
// stripped. The match is case-insensitive but the returned casing follows
// the original name. Unrecognized extensions are left untouched.
func BaseName(path string) string {
	base := filepath.Base(path)
	ext := matchExtension(path)
	if ext == "" {
		return base
	}
	return base[:len(base)-len(ext)]
}
