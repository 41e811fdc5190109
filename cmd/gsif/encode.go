package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/sif"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: file path")
	errInvalidBias     = errors.New("bias must be one of: red, green, blue")
	errInvalidCode     = errors.New("predictor and tile codes must be in [0, 3]")
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "enc",
		Usage:     "Encode a PNG/JPEG/GIF image to SIF (use \"-\" for stdin)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "output file path (- for stdout); a .gz suffix gzip-wraps the file",
			},
			&cli.IntFlag{
				Name:    "predictor",
				Aliases: []string{"p"},
				Value:   1,
				Usage:   "predictor: 0 direct, 1/2/3 decorrelate from R/G/B",
			},
			&cli.StringFlag{
				Name:    "bias",
				Aliases: []string{"b"},
				Value:   "red",
				Usage:   "delta bias channel: red, green or blue",
			},
			&cli.IntFlag{
				Name:    "tile",
				Aliases: []string{"t"},
				Value:   0,
				Usage:   "tile height code 0-3 (heights 15, 31, 63, 127)",
			},
			&cli.BoolFlag{
				Name:  "2d",
				Usage: "enable 2-D prediction (sliding-window anchor refinement)",
			},
			&cli.BoolFlag{
				Name:  "dict",
				Usage: "enable the contextual dictionary",
			},
		},
		Action: runEncode,
	}
}

func encodeConfig(cmd *cli.Command) (compression.Config, error) {
	predictor := cmd.Int("predictor")
	tile := cmd.Int("tile")
	if predictor < 0 || predictor > 3 || tile < 0 || tile > 3 {
		return compression.Config{}, errInvalidCode
	}
	var bias compression.DeltaBias
	switch strings.ToLower(cmd.String("bias")) {
	case "red", "r":
		bias = compression.BiasRed
	case "green", "g":
		bias = compression.BiasGreen
	case "blue", "b":
		bias = compression.BiasBlue
	default:
		return compression.Config{}, errInvalidBias
	}
	return compression.Config{
		TileHeightCode:    uint8(tile),
		Predictor:         compression.Predictor(predictor),
		Use2DPrediction:   cmd.Bool("2d"),
		UseContextualDict: cmd.Bool("dict"),
		Bias:              bias,
	}, nil
}

func runEncode(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}
	cfg, err := encodeConfig(cmd)
	if err != nil {
		return err
	}

	in, err := openInput(cmd.Args().First())
	if err != nil {
		return err
	}
	defer in.Close()

	m, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding input image: %w", err)
	}

	output := cmd.String("output")
	if output == "-" {
		return sif.Encode(os.Stdout, m, cfg)
	}
	if strings.HasSuffix(output, ".gz") {
		pix, w, h := sif.Raster(m)
		return sif.WriteFile(output, sif.NewContentDescriptor(w, h, cfg), pix)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	return sif.Encode(file, m, cfg)
}

// openInput returns a reader for path, with "-" meaning stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return file, nil
}
