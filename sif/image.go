package sif

import (
	"image"
	"image/color"
	"io"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/internal/xdr"
)

func init() {
	// The two signature bytes are the 12-bit magic plus the fixed channel
	// count of 3.
	image.RegisterFormat("sif", "\x51\xf3", Decode, DecodeConfig)
}

// Encode writes m to w in SIF format using the given coding configuration.
// The zero Config selects the direct predictor with red bias. Alpha is
// discarded; SIF carries three channels only.
func Encode(w io.Writer, m image.Image, cfg compression.Config) error {
	pix, width, height := Raster(m)
	if width == 0 || height == 0 {
		return ErrInvalidDimensions
	}
	data, err := Compress(NewContentDescriptor(width, height, cfg), pix)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a SIF image from r. The result is an *image.NRGBA with an
// opaque alpha channel.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	desc, pix, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height)))
	si := 0
	for di := 0; di < len(img.Pix); di += 4 {
		img.Pix[di+0] = pix[si+0]
		img.Pix[di+1] = pix[si+1]
		img.Pix[di+2] = pix[si+2]
		img.Pix[di+3] = 0xFF
		si += Channels
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a SIF image
// without decoding the raster.
func DecodeConfig(r io.Reader) (image.Config, error) {
	// A valid file is at least minimumImageSize bytes, so the full
	// worst-case header prefix is always available.
	header := make([]byte, fileHeaderMaxSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return image.Config{}, ErrTooSmall
	}
	desc, err := parseFileHeader(xdr.NewReader(header))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(desc.Width),
		Height:     int(desc.Height),
	}, nil
}

// Raster flattens m into a row-major R,G,B raster, returning the pixel
// bytes and the image dimensions. Alpha is discarded.
func Raster(m image.Image) ([]byte, int, int) {
	bounds := m.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pix := make([]byte, width*height*Channels)

	switch src := m.(type) {
	case *image.NRGBA:
		di := 0
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width*4]
			for x := 0; x < width*4; x += 4 {
				pix[di+0] = row[x+0]
				pix[di+1] = row[x+1]
				pix[di+2] = row[x+2]
				di += Channels
			}
		}
	case *image.RGBA:
		di := 0
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width*4]
			for x := 0; x < width*4; x += 4 {
				pix[di+0] = row[x+0]
				pix[di+1] = row[x+1]
				pix[di+2] = row[x+2]
				di += Channels
			}
		}
	default:
		di := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				pix[di+0] = c.R
				pix[di+1] = c.G
				pix[di+2] = c.B
				di += Channels
			}
		}
	}
	return pix, width, height
}
