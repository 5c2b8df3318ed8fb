package main

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4"
)

// openSnapshotReader opens a snapshot for reading, decompressing .gz and
// .lz4 files and unpacking the largest entry of a .zip. Plain files are
// returned as-is.
func openSnapshotReader(path string) (io.ReadCloser, error) {
	switch filepath.Ext(path) {
	case ".gz":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &chainedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".lz4":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &chainedCloser{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	case ".zip":
		return openLargestZipEntry(path)
	default:
		return os.Open(path)
	}
}

// openLargestZipEntry assumes a zip holds one meaningful table plus noise,
// so it takes the biggest file.
func openLargestZipEntry(path string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	var largest *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largest == nil || f.UncompressedSize64 > largest.UncompressedSize64 {
			largest = f
		}
	}
	if largest == nil {
		zr.Close()
		return nil, fmt.Errorf("zip %s contains no files", path)
	}
	entry, err := largest.Open()
	if err != nil {
		zr.Close()
		return nil, err
	}
	return &chainedCloser{Reader: entry, closers: []io.Closer{entry, zr}}, nil
}

type chainedCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *chainedCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
