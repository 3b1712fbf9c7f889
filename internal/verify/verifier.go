package verify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coldstore/internal/compress"
	"coldstore/internal/fileutil"
	"coldstore/internal/logging"
	"coldstore/internal/redundancy"
	"coldstore/internal/seal"
	"coldstore/internal/services"
	"coldstore/internal/services/par2"
)

// Status is a verification layer's outcome.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Layer names for the report, in execution order.
const (
	LayerZstd   = "zstd integrity"
	LayerSHA256 = "sha256 digest"
	LayerBLAKE3 = "blake3 digest"
	LayerPar2   = "par2 redundancy"
	LayerTar    = "tar structure"
)

// Layer is one verification layer's result.
type Layer struct {
	Name   string
	Status Status
	Detail string
}

// Report collects all layer results for one artifact.
type Report struct {
	Artifact string
	Layers   []Layer
	Elapsed  time.Duration
}

// Passed reports whether no layer failed. Skipped layers do not fail the
// artifact, they only weaken the verdict.
func (r *Report) Passed() bool {
	for _, layer := range r.Layers {
		if layer.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Verifier runs the layered artifact checks.
type Verifier struct {
	par2   par2.Client
	logger *slog.Logger
}

// NewVerifier returns a Verifier using the given redundancy client.
func NewVerifier(par2Client par2.Client, logger *slog.Logger) *Verifier {
	return &Verifier{par2: par2Client, logger: logging.NewComponentLogger(logger, "verifier")}
}

// Verify runs every layer against artifactPath. The report is always
// returned; err is non-nil when any layer failed, classified as
// repairable when the recovery set is the only contradicted layer.
func (v *Verifier) Verify(ctx context.Context, artifactPath string) (*Report, error) {
	start := time.Now()
	report := &Report{Artifact: artifactPath}
	if _, err := os.Stat(artifactPath); err != nil {
		return report, fmt.Errorf("artifact: %w", err)
	}

	report.add(v.checkZstd(artifactPath))
	report.add(v.checkDigest(artifactPath, seal.AlgorithmSHA256, LayerSHA256))
	report.add(v.checkDigest(artifactPath, seal.AlgorithmBLAKE3, LayerBLAKE3))
	report.add(v.checkRedundancy(ctx, artifactPath))
	report.add(v.checkTar(artifactPath))
	report.Elapsed = time.Since(start)

	for _, layer := range report.Layers {
		v.logger.Debug("verification layer",
			logging.String("artifact", artifactPath),
			logging.String("layer", layer.Name),
			logging.String("status", layer.Status.String()),
			logging.String("detail", layer.Detail),
		)
	}

	if report.Passed() {
		return report, nil
	}
	if report.onlyRedundancyFailed() {
		return report, services.Wrap(services.ErrRedundancyRepairable, "verify", "layers", artifactPath, nil)
	}
	return report, services.Wrap(services.ErrArtifactCorrupt, "verify", "layers", artifactPath, nil)
}

func (r *Report) add(layer Layer) {
	r.Layers = append(r.Layers, layer)
}

// onlyRedundancyFailed reports whether the recovery set is the only failed
// layer, meaning the payload itself still proves out and a repair can
// restore full protection.
func (r *Report) onlyRedundancyFailed() bool {
	for _, layer := range r.Layers {
		if layer.Status != StatusFailed {
			continue
		}
		if layer.Name != LayerPar2 {
			return false
		}
	}
	return true
}

func (v *Verifier) checkZstd(artifactPath string) Layer {
	if err := compress.SelfCheck(artifactPath); err != nil {
		return Layer{Name: LayerZstd, Status: StatusFailed, Detail: err.Error()}
	}
	return Layer{Name: LayerZstd, Status: StatusPassed, Detail: "all frames decoded"}
}

func (v *Verifier) checkDigest(artifactPath, algorithm, layerName string) Layer {
	sidecar := seal.SidecarPath(artifactPath, algorithm)
	if !fileutil.PathExists(sidecar) {
		return Layer{Name: layerName, Status: StatusSkipped, Detail: "sidecar missing"}
	}
	stored, computed, err := seal.Check(artifactPath, algorithm)
	if err != nil {
		return Layer{Name: layerName, Status: StatusFailed, Detail: err.Error()}
	}
	if stored != computed {
		return Layer{Name: layerName, Status: StatusFailed,
			Detail: fmt.Sprintf("stored %s, computed %s", stored, computed)}
	}
	return Layer{Name: layerName, Status: StatusPassed, Detail: "digest matches"}
}

func (v *Verifier) checkRedundancy(ctx context.Context, artifactPath string) Layer {
	descriptor := redundancy.DescriptorPath(artifactPath)
	if !fileutil.PathExists(descriptor) {
		return Layer{Name: LayerPar2, Status: StatusSkipped, Detail: "recovery set missing"}
	}
	outcome, _, err := v.par2.Verify(ctx, descriptor)
	if err != nil {
		return Layer{Name: LayerPar2, Status: StatusFailed, Detail: err.Error()}
	}
	switch outcome {
	case par2.OutcomeIntact:
		return Layer{Name: LayerPar2, Status: StatusPassed, Detail: "set intact"}
	case par2.OutcomeRepairable:
		return Layer{Name: LayerPar2, Status: StatusFailed, Detail: "damage detected, repair possible"}
	default:
		return Layer{Name: LayerPar2, Status: StatusFailed, Detail: "damage beyond the recovery set"}
	}
}

func (v *Verifier) checkTar(artifactPath string) Layer {
	members, err := compress.InspectTar(artifactPath)
	if err != nil {
		return Layer{Name: LayerTar, Status: StatusFailed, Detail: err.Error()}
	}
	return Layer{Name: LayerTar, Status: StatusPassed, Detail: fmt.Sprintf("%d members listed", members)}
}
