package redundancy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"coldstore/internal/fileutil"
	"coldstore/internal/logging"
	"coldstore/internal/services"
	"coldstore/internal/services/par2"
)

// Manager generates and verifies PAR2 recovery sets for sealed artifacts.
type Manager struct {
	client          par2.Client
	recoveryPercent int
	logger          *slog.Logger
}

// NewManager returns a Manager that generates sets at recoveryPercent.
func NewManager(client par2.Client, recoveryPercent int, logger *slog.Logger) *Manager {
	return &Manager{
		client:          client,
		recoveryPercent: recoveryPercent,
		logger:          logging.NewComponentLogger(logger, "redundancy"),
	}
}

// DescriptorPath returns the main .par2 descriptor path for an artifact.
func DescriptorPath(artifactPath string) string {
	return artifactPath + ".par2"
}

// Generate creates the recovery set for artifactPath and immediately
// verifies it against the artifact. A set that does not verify intact is
// removed in full. Returns the paths of the produced .par2 files.
func (m *Manager) Generate(ctx context.Context, artifactPath string) ([]string, error) {
	files, err := m.client.Create(ctx, artifactPath, m.recoveryPercent)
	if err != nil {
		return nil, services.Wrap(services.ErrRedundancy, "redundancy", "create set", artifactPath, err)
	}
	remove := func() {
		for _, path := range files {
			fileutil.RemoveQuiet(path)
		}
	}

	outcome, output, err := m.client.Verify(ctx, DescriptorPath(artifactPath))
	if err != nil {
		remove()
		return nil, services.Wrap(services.ErrRedundancy, "redundancy", "verify set", artifactPath, err)
	}
	switch outcome {
	case par2.OutcomeIntact:
	case par2.OutcomeRepairable:
		remove()
		return nil, services.Wrap(services.ErrRedundancyRepairable, "redundancy", "verify set",
			fmt.Sprintf("%s: fresh set already needs repair", artifactPath), nil)
	default:
		remove()
		return nil, services.Wrap(services.ErrRedundancy, "redundancy", "verify set",
			fmt.Sprintf("%s: %s", artifactPath, lastNonEmpty(output)), nil)
	}

	m.logger.Debug("recovery set generated",
		logging.String("artifact", artifactPath),
		logging.Int("recovery_percent", m.recoveryPercent),
		logging.Int("files", len(files)),
	)
	return files, nil
}

// VerifySet runs the encoder's verification for an existing set and maps
// the outcome onto the error taxonomy: intact is nil, repairable and
// failed are distinct errors.
func (m *Manager) VerifySet(ctx context.Context, artifactPath string) (par2.Outcome, string, error) {
	outcome, output, err := m.client.Verify(ctx, DescriptorPath(artifactPath))
	if err != nil {
		return outcome, output, services.Wrap(services.ErrRedundancy, "redundancy", "verify set", artifactPath, err)
	}
	switch outcome {
	case par2.OutcomeIntact:
		return outcome, output, nil
	case par2.OutcomeRepairable:
		return outcome, output, services.Wrap(services.ErrRedundancyRepairable, "redundancy", "verify set", artifactPath, nil)
	default:
		return outcome, output, services.Wrap(services.ErrRedundancy, "redundancy", "verify set", artifactPath, nil)
	}
}

// Repair reconstructs a damaged artifact from its recovery set.
func (m *Manager) Repair(ctx context.Context, artifactPath string) (string, error) {
	output, err := m.client.Repair(ctx, DescriptorPath(artifactPath))
	if err != nil {
		return output, services.Wrap(services.ErrRedundancy, "redundancy", "repair", artifactPath, err)
	}
	return output, nil
}

func lastNonEmpty(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
