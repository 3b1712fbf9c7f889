package inspect

import (
	"context"
	"errors"
	"log/slog"

	"coldstore/internal/logging"
	"coldstore/internal/services"
	"coldstore/internal/services/sevenzip"
	"coldstore/internal/source"
)

// Topology describes how an archive's members are arranged.
type Topology int

const (
	// TopologyScattered means members sit at the archive root or under
	// multiple top-level entries.
	TopologyScattered Topology = iota
	// TopologySingleRoot means every member lives under one top-level
	// directory whose name matches the archive's base name.
	TopologySingleRoot
)

func (t Topology) String() string {
	if t == TopologySingleRoot {
		return "single-root"
	}
	return "scattered"
}

// Inspector reads archive listings and decides the extraction layout.
type Inspector struct {
	client sevenzip.Client
	logger *slog.Logger
}

// NewInspector returns an Inspector backed by the given listing client.
func NewInspector(client sevenzip.Client, logger *slog.Logger) *Inspector {
	return &Inspector{client: client, logger: logging.NewComponentLogger(logger, "inspector")}
}

// Inspect lists the archive without extracting and classifies its topology.
// An archive with no members at all is rejected.
func (i *Inspector) Inspect(ctx context.Context, archive source.Archive) (Topology, error) {
	entries, err := i.client.List(ctx, archive.Path)
	if err != nil {
		return TopologyScattered, services.Wrap(services.ErrInspection, "inspect", "list archive", archive.Path, err)
	}
	if len(entries) == 0 {
		return TopologyScattered, services.Wrap(services.ErrInspection, "inspect", "list archive",
			archive.Path+": archive has no members", errors.New("empty listing"))
	}

	topology := classify(entries, archive.Base())
	i.logger.Debug("archive inspected",
		logging.String("archive", archive.Path),
		logging.String("topology", topology.String()),
		logging.Int("members", len(entries)),
	)
	return topology, nil
}

// classify applies the single-root heuristic: exactly one top-level name,
// backed by an explicit directory entry, matching the archive base name.
func classify(entries []sevenzip.Entry, baseName string) Topology {
	names := sevenzip.TopLevelNames(entries)
	if len(names) != 1 || names[0] != baseName {
		return TopologyScattered
	}
	for _, entry := range entries {
		if entry.Path == names[0] {
			if entry.IsDir {
				return TopologySingleRoot
			}
			return TopologyScattered
		}
	}
	// The top-level name only ever appears as a path prefix; without an
	// explicit directory entry the layout is treated as scattered.
	return TopologyScattered
}
