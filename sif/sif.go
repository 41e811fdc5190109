// Package sif reads and writes SIF (Simple Image Format) files.
//
// SIF is a lossless compressor for 3-channel, 8-bits-per-channel raster
// images. It trades modest ratios for a small single-pass codec with
// fixed-size working memory and no entropy coder: images are split into
// horizontal slices, each coded independently with a per-pixel prediction
// model, a delta/run/dictionary opcode set and a boustrophedon tile scan.
//
// This package provides the file-level surface: header framing, the slice
// splitter, validation, file helpers and standard library image
// integration. The slice codec itself lives in the compression package.
package sif

import (
	"errors"

	"github.com/MarcioPais/go-sif/compression"
)

// Format constants.
const (
	// magicNumber occupies the high 12 bits of the leading big-endian
	// 16-bit word; the low 4 bits carry the channel count.
	magicNumber = 0x51F0

	// Channels is the only supported channel count.
	Channels = 3

	// MaxDimension bounds image width and height.
	MaxDimension = compression.MaxDimension

	endOfSliceMarkerSize = compression.EndOfSliceMarkerSize

	// Wire sizes: slice header (size, flags, minimal height) plus marker,
	// and file header (magic, minimal dimensions) plus one slice.
	minimumSliceSize = 4 + 1 + 1 + endOfSliceMarkerSize
	minimumImageSize = 2 + 1 + 1 + minimumSliceSize

	fileHeaderMaxSize  = 2 + 4 + 4
	sliceHeaderMaxSize = 4 + 1 + 4
)

// Decoder errors, reported for malformed input. Encoder-side misuse
// (invalid descriptor, undersized raster) is rejected with the same
// sentinel values at the public boundary.
var (
	ErrTooSmall          = errors.New("sif: input smaller than minimum image size")
	ErrBadMagic          = errors.New("sif: magic number mismatch")
	ErrChannels          = errors.New("sif: unsupported channel count")
	ErrInvalidDimensions = errors.New("sif: image dimensions out of range")
	ErrShortRaster       = errors.New("sif: source raster too small")
	ErrCorrupted         = errors.New("sif: corrupted image data")
	ErrTooLarge          = errors.New("sif: image too large for this platform")
)

// ContentDescriptor describes the raster handed to Compress or returned by
// Decompress.
type ContentDescriptor struct {
	Width    uint32
	Height   uint32
	Channels uint8
	Flags    uint8
}

// NewContentDescriptor builds a descriptor for a width-by-height RGB image
// coded with the given configuration.
func NewContentDescriptor(width, height int, cfg compression.Config) *ContentDescriptor {
	return &ContentDescriptor{
		Width:    uint32(width),
		Height:   uint32(height),
		Channels: Channels,
		Flags:    cfg.Flags(),
	}
}

// Config unpacks the descriptor's flags byte.
func (d *ContentDescriptor) Config() compression.Config {
	return compression.ParseFlags(d.Flags)
}

// RasterSize returns the byte length of the raster the descriptor covers.
func (d *ContentDescriptor) RasterSize() uint64 {
	return uint64(d.Width) * uint64(d.Height) * Channels
}

// Validate checks the descriptor against the format limits.
func (d *ContentDescriptor) Validate() error {
	if d.Channels != Channels {
		return ErrChannels
	}
	if d.Width == 0 || d.Width > MaxDimension || d.Height == 0 || d.Height > MaxDimension {
		return ErrInvalidDimensions
	}
	return nil
}
