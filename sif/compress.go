package sif

import (
	"math"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/internal/xdr"
)

// CompressBound returns the worst-case size of Compress's output for a
// descriptor, assuming the pathological single-line-per-slice split.
func CompressBound(d *ContentDescriptor) uint64 {
	perLine := sliceHeaderMaxSize + uint64(d.Width)*(Channels+1) + endOfSliceMarkerSize
	return fileHeaderMaxSize + uint64(d.Height)*perLine
}

// maxSliceHeight returns the tallest slice of the given width whose
// worst-case compressed size still fits the 32-bit slice size field.
func maxSliceHeight(width uint32) uint32 {
	h := (uint64(math.MaxUint32) - endOfSliceMarkerSize) / (uint64(width) * (Channels + 1))
	if h < 1 {
		return 1
	}
	if h > MaxDimension {
		return MaxDimension
	}
	return uint32(h)
}

// sliceHeights splits an image height into slice heights so that every
// slice's worst-case compressed size fits in the u32 slice header field.
// A nonzero maxHeight caps slices further.
func sliceHeights(width, height, maxHeight uint32) []uint32 {
	max := maxSliceHeight(width)
	if maxHeight > 0 && maxHeight < max {
		max = maxHeight
	}
	heights := make([]uint32, 0, (height+max-1)/max)
	for remaining := height; remaining > 0; {
		h := remaining
		if h > max {
			h = max
		}
		heights = append(heights, h)
		remaining -= h
	}
	return heights
}

// CompressOptions tunes the encoder-side framing. The zero value matches
// Compress.
type CompressOptions struct {
	// MaxSliceHeight caps the rows per slice below the format's own
	// 32-bit-size-field bound. Smaller slices cost a few header bytes each
	// but let multi-slice files stream and decode in parallel. 0 means no
	// extra cap.
	MaxSliceHeight uint32
}

// Compress encodes the row-major R,G,B raster pix described by desc and
// returns the SIF file bytes.
func Compress(desc *ContentDescriptor, pix []byte) ([]byte, error) {
	return CompressWithOptions(desc, pix, CompressOptions{})
}

// CompressWithOptions is Compress with explicit framing options.
func CompressWithOptions(desc *ContentDescriptor, pix []byte, opts CompressOptions) ([]byte, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(pix)) < desc.RasterSize() {
		return nil, ErrShortRaster
	}
	bound := CompressBound(desc)
	if bound > uint64(math.MaxInt) {
		return nil, ErrTooLarge
	}

	buf := make([]byte, bound)
	w := xdr.NewWriter(buf)
	if err := w.WriteUint16BE(magicNumber | uint16(desc.Channels)); err != nil {
		return nil, err
	}
	if err := w.WriteULEB128(desc.Width); err != nil {
		return nil, err
	}
	if err := w.WriteULEB128(desc.Height); err != nil {
		return nil, err
	}

	heights := sliceHeights(desc.Width, desc.Height, opts.MaxSliceHeight)
	stride := uint64(desc.Width) * Channels

	workers := effectiveWorkers(GetParallelConfig())
	if len(heights) > 1 && workers > 1 {
		if err := compressSlicesParallel(w, desc, pix, heights, stride); err != nil {
			return nil, err
		}
	} else {
		srcOff := uint64(0)
		for _, h := range heights {
			if err := compressSliceFramed(w, desc, pix[srcOff:], h); err != nil {
				return nil, err
			}
			srcOff += uint64(h) * stride
		}
	}
	return buf[:w.Pos()], nil
}

// compressSliceFramed writes one slice header and payload at the writer's
// position, patching the size field once the payload size is known.
func compressSliceFramed(w *xdr.Writer, desc *ContentDescriptor, src []byte, height uint32) error {
	sizePos := w.Pos()
	if err := w.Skip(4); err != nil {
		return err
	}
	if err := w.WriteByte(desc.Flags); err != nil {
		return err
	}
	if err := w.WriteULEB128(height); err != nil {
		return err
	}
	n, err := compression.CompressSlice(w.Tail(), src, int(desc.Width), int(height), desc.Flags)
	if err != nil {
		return err
	}
	if err := w.Skip(n); err != nil {
		return err
	}
	return w.PutUint32LEAt(sizePos, uint32(n))
}

// compressSlicesParallel encodes all slices concurrently into pooled
// scratch buffers, then assembles headers and payloads in order. Slices
// share no codec state, so the output is identical to the sequential path.
func compressSlicesParallel(w *xdr.Writer, desc *ContentDescriptor, pix []byte, heights []uint32, stride uint64) error {
	type result struct {
		buf []byte
		n   int
	}
	results := make([]result, len(heights))
	offsets := make([]uint64, len(heights))
	off := uint64(0)
	for i, h := range heights {
		offsets[i] = off
		off += uint64(h) * stride
	}

	err := parallelFor(len(heights), func(i int) error {
		bound := compression.CompressSliceBound(int(desc.Width), int(heights[i]))
		buf := GetBuffer(int(bound))
		n, err := compression.CompressSlice(buf, pix[offsets[i]:], int(desc.Width), int(heights[i]), desc.Flags)
		if err != nil {
			PutBuffer(buf)
			return err
		}
		results[i] = result{buf: buf, n: n}
		return nil
	})
	if err != nil {
		for _, r := range results {
			PutBuffer(r.buf)
		}
		return err
	}

	for i, h := range heights {
		r := results[i]
		sizePos := w.Pos()
		if err := w.Skip(4); err != nil {
			return err
		}
		if err := w.WriteByte(desc.Flags); err != nil {
			return err
		}
		if err := w.WriteULEB128(h); err != nil {
			return err
		}
		if err := w.WriteBytes(r.buf[:r.n]); err != nil {
			return err
		}
		if err := w.PutUint32LEAt(sizePos, uint32(r.n)); err != nil {
			return err
		}
		PutBuffer(r.buf)
	}
	return nil
}
