package sif_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/sif"
)

// Example_roundTrip compresses a small raster and decodes it back.
func Example_roundTrip() {
	// A 2x2 raster in row-major R,G,B order.
	pix := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
	desc := sif.NewContentDescriptor(2, 2, compression.Config{})

	data, err := sif.Compress(desc, pix)
	if err != nil {
		fmt.Println("compress:", err)
		return
	}

	decoded, raster, err := sif.Decompress(data)
	if err != nil {
		fmt.Println("decompress:", err)
		return
	}
	fmt.Printf("%dx%d, lossless: %t\n", decoded.Width, decoded.Height, bytes.Equal(pix, raster))
	// Output: 2x2, lossless: true
}

// Example_imageEncode uses the standard library image integration.
func Example_imageEncode() {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(64 * x), G: uint8(64 * y), B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	cfg := compression.Config{
		Predictor:       compression.PredictorDecorrelateRed,
		Use2DPrediction: true,
	}
	if err := sif.Encode(&buf, img, cfg); err != nil {
		fmt.Println("encode:", err)
		return
	}

	m, format, err := image.Decode(&buf)
	if err != nil {
		fmt.Println("decode:", err)
		return
	}
	fmt.Println(format, m.Bounds().Dx(), m.Bounds().Dy())
	// Output: sif 4 4
}
