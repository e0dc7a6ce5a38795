package utils

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Decompress decompresses data according to the compression extension
// ("xz", "zst", "bz2", "gz", or "" for plain text), matching the extension
// slot the Fetcher probes in a fixed order.
func Decompress(ext string, data []byte) ([]byte, error) {
	switch ext {
	case "xz":
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return io.ReadAll(r)

	case "zst":
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zst: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)

	case "bz2":
		return io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))

	case "gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gz: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)

	case "":
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported compression extension %q", ext)
	}
}
