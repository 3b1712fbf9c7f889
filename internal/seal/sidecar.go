package seal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SidecarPath returns the sidecar file path for an artifact and algorithm.
func SidecarPath(artifactPath, algorithm string) string {
	return artifactPath + "." + algorithm
}

// WriteSidecar writes the digest in the coreutils format checkable with
// `sha256sum -c`: "<hex>  <filename>\n", filename without directories.
func WriteSidecar(artifactPath, algorithm, digest string) (string, error) {
	path := SidecarPath(artifactPath, algorithm)
	line := fmt.Sprintf("%s  %s\n", digest, filepath.Base(artifactPath))
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return "", fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return path, nil
}

// ReadSidecar parses a sidecar file and returns its digest and the file
// name it refers to.
func ReadSidecar(path string) (digest, filename string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read sidecar %s: %w", path, err)
	}
	line := strings.TrimRight(string(raw), "\n")
	digest, filename, ok := strings.Cut(line, "  ")
	if !ok || digest == "" || filename == "" {
		return "", "", fmt.Errorf("sidecar %s: malformed line %q", path, line)
	}
	return digest, filename, nil
}
