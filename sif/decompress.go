package sif

import (
	"math"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/internal/xdr"
)

// sliceInfo indexes one slice of a parsed file: its header fields, its
// payload (end marker included) and its destination offset in the raster.
type sliceInfo struct {
	flags     uint8
	height    uint32
	payload   []byte
	rasterOff uint64
}

// parseFileHeader reads and validates the magic word and image dimensions.
func parseFileHeader(r *xdr.Reader) (*ContentDescriptor, error) {
	magic, err := r.ReadUint16BE()
	if err != nil {
		return nil, ErrTooSmall
	}
	if magic&0xFFF0 != magicNumber {
		return nil, ErrBadMagic
	}
	channels := uint8(magic & 0x0F)
	if channels != Channels {
		return nil, ErrChannels
	}
	width, err := r.ReadULEB128()
	if err != nil {
		return nil, ErrCorrupted
	}
	height, err := r.ReadULEB128()
	if err != nil {
		return nil, ErrCorrupted
	}
	if width == 0 || width > MaxDimension || height == 0 || height > MaxDimension {
		return nil, ErrInvalidDimensions
	}
	return &ContentDescriptor{Width: width, Height: height, Channels: channels}, nil
}

// parseImage validates the file framing and indexes every slice without
// decoding any payload.
func parseImage(data []byte) (*ContentDescriptor, []sliceInfo, error) {
	if len(data) < minimumImageSize {
		return nil, nil, ErrTooSmall
	}
	r := xdr.NewReader(data)
	desc, err := parseFileHeader(r)
	if err != nil {
		return nil, nil, err
	}
	height := desc.Height
	stride := uint64(desc.Width) * Channels
	rasterOff := uint64(0)

	var slices []sliceInfo
	for total := uint32(0); total < height; {
		if r.Len() < minimumSliceSize {
			return nil, nil, ErrCorrupted
		}
		size, err := r.ReadUint32LE()
		if err != nil {
			return nil, nil, ErrCorrupted
		}
		flags, err := r.ReadByte()
		if err != nil {
			return nil, nil, ErrCorrupted
		}
		sliceHeight, err := r.ReadULEB128()
		if err != nil {
			return nil, nil, ErrCorrupted
		}
		if size <= endOfSliceMarkerSize || sliceHeight == 0 {
			return nil, nil, ErrCorrupted
		}
		if uint64(size) > uint64(r.Len()) {
			return nil, nil, ErrCorrupted
		}
		if sliceHeight > height-total {
			return nil, nil, ErrCorrupted
		}
		payload := data[r.Pos() : r.Pos()+int(size)]
		if err := r.Skip(int(size)); err != nil {
			return nil, nil, ErrCorrupted
		}
		slices = append(slices, sliceInfo{
			flags:     flags,
			height:    sliceHeight,
			payload:   payload,
			rasterOff: rasterOff,
		})
		total += sliceHeight
		rasterOff += uint64(sliceHeight) * stride
		desc.Flags = flags
	}
	return desc, slices, nil
}

// SliceInfo describes one slice of a parsed file.
type SliceInfo struct {
	// Flags is the slice's coding configuration byte.
	Flags uint8
	// Height is the number of pixel rows the slice covers.
	Height uint32
	// PayloadSize is the slice payload length in bytes, end marker included.
	PayloadSize uint32
}

// Info parses the file framing without decoding any pixel data and returns
// the descriptor and per-slice details.
func Info(data []byte) (*ContentDescriptor, []SliceInfo, error) {
	desc, slices, err := parseImage(data)
	if err != nil {
		return nil, nil, err
	}
	infos := make([]SliceInfo, len(slices))
	for i, s := range slices {
		infos[i] = SliceInfo{
			Flags:       s.flags,
			Height:      s.height,
			PayloadSize: uint32(len(s.payload)),
		}
	}
	return desc, infos, nil
}

// Decompress parses a SIF file and returns its descriptor and the decoded
// raster in row-major R,G,B order. Malformed input yields an error and no
// raster; partial output is never returned.
func Decompress(data []byte) (*ContentDescriptor, []byte, error) {
	desc, slices, err := parseImage(data)
	if err != nil {
		return nil, nil, err
	}
	size := desc.RasterSize()
	if size > uint64(math.MaxInt) {
		return nil, nil, ErrTooLarge
	}
	out := make([]byte, size)

	err = parallelFor(len(slices), func(i int) error {
		s := slices[i]
		return compression.DecompressSlice(out[s.rasterOff:], s.payload, int(desc.Width), int(s.height), s.flags)
	})
	if err != nil {
		return nil, nil, ErrCorrupted
	}
	return desc, out, nil
}
