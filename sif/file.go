package sif

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// gzipMagic is the two-byte gzip stream signature.
var gzipMagic = []byte{0x1F, 0x8B}

// WriteFile compresses pix as described by desc and writes the result to
// path. When path ends in ".gz" the file bytes are wrapped in a gzip
// stream; the SIF payload itself is unchanged.
func WriteFile(path string, desc *ContentDescriptor, pix []byte) error {
	data, err := Compress(desc, pix)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("sif: gzip wrap: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("sif: gzip wrap: %w", err)
		}
		data = buf.Bytes()
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a SIF file from path and decompresses it. A gzip-wrapped
// file (for example one written to a ".gz" path) is unwrapped
// transparently, detected by its signature rather than the file name.
func ReadFile(path string) (*ContentDescriptor, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("sif: gzip unwrap: %w", err)
		}
		unwrapped, err := io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, nil, fmt.Errorf("sif: gzip unwrap: %w", err)
		}
		data = unwrapped
	}
	return Decompress(data)
}
