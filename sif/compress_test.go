package sif

import (
	"math"
	"testing"

	"github.com/MarcioPais/go-sif/compression"
)

func TestMaxSliceHeight(t *testing.T) {
	tests := []struct {
		width uint32
		want  uint32
	}{
		// Largest h with width*h*4+4 <= 2^32-1.
		{1 << 24, 63},
		{1 << 20, 1023},
		{1, MaxDimension}, // clamped to the dimension bound
		{MaxDimension, 2},
	}
	for _, tt := range tests {
		if got := maxSliceHeight(tt.width); got != tt.want {
			t.Errorf("maxSliceHeight(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestSliceHeightsSplitsWideImages(t *testing.T) {
	// A 2^24-wide image exceeds the u32 worst-case bound above 63 rows, so
	// 300 rows must split into ceil(300/63) slices summing to the total.
	heights := sliceHeights(1<<24, 300, 0)
	want := []uint32{63, 63, 63, 63, 48}
	if len(heights) != len(want) {
		t.Fatalf("sliceHeights = %v, want %v", heights, want)
	}
	sum := uint32(0)
	for i, h := range heights {
		if h != want[i] {
			t.Fatalf("sliceHeights = %v, want %v", heights, want)
		}
		sum += h
	}
	if sum != 300 {
		t.Fatalf("slice heights sum to %d, want 300", sum)
	}

	for _, h := range heights {
		if compression.CompressSliceBound(1<<24, int(h)) > math.MaxUint32 {
			t.Fatalf("slice of height %d still exceeds the u32 bound", h)
		}
	}
}

func TestSliceHeightsSingleSlice(t *testing.T) {
	heights := sliceHeights(640, 480, 0)
	if len(heights) != 1 || heights[0] != 480 {
		t.Fatalf("sliceHeights(640, 480) = %v, want [480]", heights)
	}
}

func TestSliceHeightsExplicitCap(t *testing.T) {
	heights := sliceHeights(64, 100, 33)
	want := []uint32{33, 33, 33, 1}
	if len(heights) != len(want) {
		t.Fatalf("sliceHeights = %v, want %v", heights, want)
	}
	for i, h := range heights {
		if h != want[i] {
			t.Fatalf("sliceHeights = %v, want %v", heights, want)
		}
	}
}

func TestCompressBoundCoversOutput(t *testing.T) {
	desc := NewContentDescriptor(129, 43, compression.Config{})
	pix := testNoise(129, 43, 21)
	data, err := Compress(desc, pix)
	if err != nil {
		t.Fatal(err)
	}
	if uint64(len(data)) > CompressBound(desc) {
		t.Errorf("output %d bytes exceeds bound %d", len(data), CompressBound(desc))
	}
}

func TestCompressValidation(t *testing.T) {
	pix := make([]byte, 3)
	if _, err := Compress(&ContentDescriptor{Width: 1, Height: 1, Channels: 4}, pix); err != ErrChannels {
		t.Errorf("channels=4: %v, want ErrChannels", err)
	}
	if _, err := Compress(&ContentDescriptor{Width: 0, Height: 1, Channels: 3}, pix); err != ErrInvalidDimensions {
		t.Errorf("width=0: %v, want ErrInvalidDimensions", err)
	}
	if _, err := Compress(&ContentDescriptor{Width: 2, Height: 1, Channels: 3}, pix); err != ErrShortRaster {
		t.Errorf("short raster: %v, want ErrShortRaster", err)
	}
}
