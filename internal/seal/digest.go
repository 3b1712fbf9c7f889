package seal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Algorithm names double as sidecar extensions: artifact.tar.zst.sha256.
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmBLAKE3 = "blake3"
)

// Algorithms lists the sealing digests in sidecar-writing order.
func Algorithms() []string {
	return []string{AlgorithmSHA256, AlgorithmBLAKE3}
}

func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmBLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", algorithm)
	}
}

// DigestFile computes the named digest over the whole file and returns it
// as lowercase hex.
func DigestFile(path, algorithm string) (string, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
