package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/sif"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print SIF header and slice details without decoding pixels",
		ArgsUsage: "<file>",
		Action:    runInfo,
	}
}

func runInfo(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	data, wrapped, err := readSIFData(cmd.Args().First())
	if err != nil {
		return err
	}

	desc, slices, err := sif.Info(data)
	if err != nil {
		return err
	}

	fmt.Printf("dimensions:  %dx%d\n", desc.Width, desc.Height)
	fmt.Printf("channels:    %d\n", desc.Channels)
	fmt.Printf("slices:      %d\n", len(slices))
	fmt.Printf("gzip wrap:   %t\n", wrapped)
	for i, s := range slices {
		cfg := compression.ParseFlags(s.Flags)
		fmt.Printf("slice %d:     height %d, payload %d bytes, predictor %d, bias %d, tile height %d, 2d=%t, dict=%t\n",
			i, s.Height, s.PayloadSize, cfg.Predictor, cfg.Bias, cfg.TileHeight(),
			cfg.Use2DPrediction, cfg.UseContextualDict)
	}
	return nil
}
