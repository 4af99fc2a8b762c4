// Package source opens files to scan. Compressed dumps are decoded into
// memory; everything else is mapped read-only.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrEmptyFile is returned for files without content.
var ErrEmptyFile = errors.New("source: empty file")

// Kind is how a source's bytes were obtained.
type Kind int

const (
	KindMapped Kind = iota
	KindZstd
	KindGzip
	KindLZ4
	KindBuffered
)

var kindNames = [...]string{"mapped", "zstd", "gzip", "lz4", "buffered"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Source is the content of one file.
type Source struct {
	path   string
	kind   Kind
	data   []byte
	unmap  func() error
	closed bool
}

// KindOf picks the decoder for path from its extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return KindZstd
	case ".gz":
		return KindGzip
	case ".lz4":
		return KindLZ4
	}
	return KindMapped
}

// Open reads path. The returned Source must be closed.
func Open(path string) (*Source, error) {
	kind := KindOf(path)
	if kind == KindMapped {
		return openMapped(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := decode(kind, f)
	if err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return &Source{path: path, kind: kind, data: data}, nil
}

func decode(kind Kind, r io.Reader) ([]byte, error) {
	switch kind {
	case KindZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case KindGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case KindLZ4:
		return io.ReadAll(lz4.NewReader(r))
	}
	return io.ReadAll(r)
}

// FromBytes wraps data already in memory.
func FromBytes(name string, data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	return &Source{path: name, kind: KindBuffered, data: data}, nil
}

// Path returns the name the source was opened with.
func (s *Source) Path() string { return s.path }

// Kind returns how the bytes were obtained.
func (s *Source) Kind() Kind { return s.kind }

// Data returns the content. It must not be used after Close.
func (s *Source) Data() []byte { return s.data }

// Len returns the content length.
func (s *Source) Len() int { return len(s.data) }

// Close releases the mapping. It is safe to call more than once.
func (s *Source) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	if s.unmap != nil {
		return s.unmap()
	}
	return nil
}

func openMapped(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if !fi.Mode().IsRegular() {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return &Source{path: path, kind: KindBuffered, data: data}, nil
	}

	data, unmap, err := mapFile(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("source: map %s: %w", path, err)
	}
	return &Source{path: path, kind: KindMapped, data: data, unmap: unmap}, nil
}
