package compress

import (
	"archive/tar"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// InspectTar streams the artifact through the decoder and walks the inner
// tar's full header table, returning the member count. This is the deepest
// non-extracting check: it proves the compressed payload is still a
// readable archive, not just a valid zstd frame.
func InspectTar(artifactPath string) (int, error) {
	file, err := os.Open(artifactPath)
	if err != nil {
		return 0, fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file, zstd.WithDecoderMaxWindow(zstd.MaxWindowSize))
	if err != nil {
		return 0, fmt.Errorf("configure decoder: %w", err)
	}
	defer decoder.Close()

	tr := tar.NewReader(decoder)
	count := 0
	for {
		if _, err := tr.Next(); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return count, fmt.Errorf("read member %d: %w", count+1, err)
		}
		count++
	}
}
