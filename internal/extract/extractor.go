package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"coldstore/internal/fileutil"
	"coldstore/internal/inspect"
	"coldstore/internal/logging"
	"coldstore/internal/services"
	"coldstore/internal/services/sevenzip"
	"coldstore/internal/source"
)

// Extractor materializes an archive's contents as a working tree.
type Extractor struct {
	client sevenzip.Client
	logger *slog.Logger
}

// NewExtractor returns an Extractor backed by the given codec client.
func NewExtractor(client sevenzip.Client, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, logger: logging.NewComponentLogger(logger, "extractor")}
}

// Extract unpacks archive under workDir and returns the working tree path,
// always workDir/<base> regardless of topology. Single-root archives are
// extracted directly into workDir so their own root directory becomes the
// tree; scattered archives are extracted into a synthetic root. A failed
// or empty extraction leaves no tree behind.
func (e *Extractor) Extract(ctx context.Context, archive source.Archive, topology inspect.Topology, workDir string) (string, error) {
	tree := filepath.Join(workDir, archive.Base())

	dest := workDir
	if topology == inspect.TopologyScattered {
		dest = tree
	}
	if err := e.client.Extract(ctx, archive.Path, dest); err != nil {
		fileutil.RemoveQuiet(tree)
		return "", services.Wrap(services.ErrExtraction, "extract", "unpack archive", archive.Path, err)
	}

	info, err := os.Stat(tree)
	if err != nil || !info.IsDir() {
		fileutil.RemoveQuiet(tree)
		return "", services.Wrap(services.ErrExtraction, "extract", "verify working tree",
			tree+": missing after extraction", errors.New("no working tree produced"))
	}
	empty, err := fileutil.IsEmptyDir(tree)
	if err != nil {
		fileutil.RemoveQuiet(tree)
		return "", services.Wrap(services.ErrExtraction, "extract", "verify working tree", tree, err)
	}
	if empty {
		fileutil.RemoveQuiet(tree)
		return "", services.Wrap(services.ErrExtraction, "extract", "verify working tree",
			tree+": empty after extraction", errors.New("empty working tree"))
	}

	treeBytes, err := fileutil.DirSize(tree)
	if err != nil {
		fileutil.RemoveQuiet(tree)
		return "", services.Wrap(services.ErrExtraction, "extract", "measure working tree", tree, err)
	}

	e.logger.Debug("archive extracted",
		logging.String("archive", archive.Path),
		logging.String("tree", tree),
		logging.String("topology", topology.String()),
		logging.Int64("tree_bytes", treeBytes),
	)
	return tree, nil
}
