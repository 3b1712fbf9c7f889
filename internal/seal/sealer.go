package seal

import (
	"context"
	"fmt"
	"log/slog"

	"coldstore/internal/fileutil"
	"coldstore/internal/logging"
	"coldstore/internal/services"
)

// Sealer writes and proves the artifact's digest sidecars.
type Sealer struct {
	logger *slog.Logger
}

// NewSealer returns a Sealer.
func NewSealer(logger *slog.Logger) *Sealer {
	return &Sealer{logger: logging.NewComponentLogger(logger, "sealer")}
}

// Seal computes both digests over the artifact, writes their sidecars, and
// immediately proves each one: the sidecar is re-read and the digest
// re-derived from the artifact in a second pass. Any mismatch removes all
// sidecars written so far. Returns the sidecar paths.
func (s *Sealer) Seal(ctx context.Context, artifactPath string) ([]string, error) {
	var sidecars []string
	fail := func(operation, message string, err error) ([]string, error) {
		for _, path := range sidecars {
			fileutil.RemoveQuiet(path)
		}
		return nil, services.Wrap(services.ErrSeal, "seal", operation, message, err)
	}

	for _, algorithm := range Algorithms() {
		if err := ctx.Err(); err != nil {
			return fail("digest", algorithm, err)
		}
		digest, err := DigestFile(artifactPath, algorithm)
		if err != nil {
			return fail("digest", algorithm, err)
		}
		path, err := WriteSidecar(artifactPath, algorithm, digest)
		if err != nil {
			return fail("write sidecar", algorithm, err)
		}
		sidecars = append(sidecars, path)

		stored, _, err := ReadSidecar(path)
		if err != nil {
			return fail("re-read sidecar", algorithm, err)
		}
		rederived, err := DigestFile(artifactPath, algorithm)
		if err != nil {
			return fail("re-derive digest", algorithm, err)
		}
		if stored != rederived {
			return fail("prove sidecar", fmt.Sprintf("%s: stored %s, re-derived %s", algorithm, stored, rederived), nil)
		}
		s.logger.Debug("digest sealed",
			logging.String("artifact", artifactPath),
			logging.String("algorithm", algorithm),
			logging.String("digest", digest),
		)
	}
	return sidecars, nil
}

// Check recomputes one algorithm's digest and compares it against the
// artifact's sidecar. Returns the stored and computed digests.
func Check(artifactPath, algorithm string) (stored, computed string, err error) {
	stored, _, err = ReadSidecar(SidecarPath(artifactPath, algorithm))
	if err != nil {
		return "", "", err
	}
	computed, err = DigestFile(artifactPath, algorithm)
	if err != nil {
		return stored, "", err
	}
	return stored, computed, nil
}
