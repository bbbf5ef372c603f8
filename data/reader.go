// Package data loads index and futures market data from CSV files, plain or
// compressed, and serves per-day snapshots to the simulation.
package data

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Open opens a data file for reading, transparently decompressing .gz and
// .xz files by extension. The caller must Close the returned reader.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedReader{r: zr, closers: []io.Closer{zr, f}}, nil
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedReader{r: xr, closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// wrappedReader closes the decompressor and the underlying file together.
type wrappedReader struct {
	r       io.Reader
	closers []io.Closer
}

func (w *wrappedReader) Read(p []byte) (int, error) { return w.r.Read(p) }

func (w *wrappedReader) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
