package sif

import (
	"bytes"
	"testing"
)

// FuzzDecompress checks that arbitrary input never panics the decoder and
// that accepted input is internally consistent.
func FuzzDecompress(f *testing.F) {
	seed := func(w, h int, flags uint8, pix []byte) {
		desc := &ContentDescriptor{Width: uint32(w), Height: uint32(h), Channels: 3, Flags: flags}
		if data, err := Compress(desc, pix); err == nil {
			f.Add(data)
		}
	}
	seed(1, 1, 0x00, []byte{255, 0, 0})
	seed(16, 1, 0x00, make([]byte, 16*3))
	seed(4, 4, 0x35, testNoise(4, 4, 1))
	seed(17, 16, 0xFF, testNoise(17, 16, 2))
	f.Add([]byte{0x51, 0xF3, 0x01, 0x01})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		desc, raster, err := Decompress(data)
		if err != nil {
			if desc != nil || raster != nil {
				t.Fatal("output returned alongside an error")
			}
			return
		}
		if uint64(len(raster)) != desc.RasterSize() {
			t.Fatalf("raster length %d does not match descriptor %dx%d", len(raster), desc.Width, desc.Height)
		}
		// Whatever decoded must re-encode and decode to the same raster.
		redone, err := Compress(desc, raster)
		if err != nil {
			t.Fatalf("re-compress of accepted image: %v", err)
		}
		_, raster2, err := Decompress(redone)
		if err != nil {
			t.Fatalf("re-decompress: %v", err)
		}
		if !bytes.Equal(raster, raster2) {
			t.Fatal("re-encoded raster differs")
		}
	})
}

// FuzzRoundTrip drives the encoder with arbitrary rasters and flags.
func FuzzRoundTrip(f *testing.F) {
	f.Add(uint16(3), uint16(3), uint8(0), []byte{1, 2, 3})
	f.Add(uint16(16), uint16(15), uint8(0x14), make([]byte, 16*15*3))
	f.Add(uint16(2), uint16(2), uint8(0xFF), []byte{9, 9, 9, 9})

	f.Fuzz(func(t *testing.T, w, h uint16, flags uint8, pix []byte) {
		width := int(w%64) + 1
		height := int(h%64) + 1
		need := width * height * Channels
		raster := make([]byte, need)
		copy(raster, pix)

		desc := &ContentDescriptor{Width: uint32(width), Height: uint32(height), Channels: 3, Flags: flags}
		data, err := Compress(desc, raster)
		if err != nil {
			t.Fatalf("Compress(%dx%d, %#x): %v", width, height, flags, err)
		}
		got, out, err := Decompress(data)
		if err != nil {
			t.Fatalf("Decompress(%dx%d, %#x): %v", width, height, flags, err)
		}
		if got.Width != uint32(width) || got.Height != uint32(height) {
			t.Fatalf("descriptor %dx%d, want %dx%d", got.Width, got.Height, width, height)
		}
		if !bytes.Equal(out, raster) {
			t.Fatalf("round-trip mismatch at %dx%d flags %#x", width, height, flags)
		}
	})
}
