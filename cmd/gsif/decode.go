package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MarcioPais/go-sif/sif"
)

var errInvalidFormat = errors.New("format must be png or jpeg")

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "dec",
		Usage:     "Decode a SIF image to PNG or JPEG (use \"-\" for stdin)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "output file path (- for stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "",
				Usage:   "output format png or jpeg; default inferred from output path",
			},
			&cli.IntFlag{
				Name:  "quality",
				Value: 90,
				Usage: "JPEG quality (1-100)",
			},
		},
		Action: runDecode,
	}
}

func runDecode(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	img, err := decodeInput(cmd.Args().First())
	if err != nil {
		return err
	}

	output := cmd.String("output")
	format := strings.ToLower(cmd.String("format"))
	if format == "" {
		switch {
		case strings.HasSuffix(strings.ToLower(output), ".jpg"),
			strings.HasSuffix(strings.ToLower(output), ".jpeg"):
			format = "jpeg"
		default:
			format = "png"
		}
	}

	var w io.Writer
	if output == "-" {
		w = os.Stdout
	} else {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: int(cmd.Int("quality"))})
	default:
		return errInvalidFormat
	}
}

// decodeInput reads a SIF stream from path ("-" for stdin), transparently
// unwrapping gzip, and decodes it to an image.
func decodeInput(path string) (image.Image, error) {
	data, _, err := readSIFData(path)
	if err != nil {
		return nil, err
	}
	return sif.Decode(bytes.NewReader(data))
}
