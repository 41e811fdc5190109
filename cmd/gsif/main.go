// Package main provides the gsif CLI for converting images to and from the
// SIF format.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

// readSIFData reads a SIF stream from path ("-" for stdin) and unwraps a
// gzip layer when present. Reports whether the stream was wrapped.
func readSIFData(path string) ([]byte, bool, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, []byte{0x1F, 0x8B}) {
		return data, false, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, true, fmt.Errorf("gzip unwrap: %w", err)
	}
	unwrapped, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, true, fmt.Errorf("gzip unwrap: %w", err)
	}
	return unwrapped, true, nil
}

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:    "gsif",
		Usage:   "SIF image conversion cli",
		Version: version,
		Commands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			infoCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(1)
	}
}
