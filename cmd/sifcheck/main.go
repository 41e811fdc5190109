// sifcheck validates SIF files for correctness.
//
// Usage:
//
//	sifcheck [-q|--quiet] [-v|--verbose] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet    Only output errors. Exit code indicates pass/fail.
//	-v, --verbose  Print per-slice details for valid files.
//	-h, --help     Show this help message.
//	--version      Show version information.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/MarcioPais/go-sif/compression"
	"github.com/MarcioPais/go-sif/sif"
)

const version = "1.0.0"

// CheckResult contains the validation outcome for one file.
type CheckResult struct {
	Filename   string
	Descriptor *sif.ContentDescriptor
	Slices     []sif.SliceInfo
	GzipWrap   bool
	Err        error
}

func main() {
	quiet := false
	verbose := false
	var files []string

	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "-q", "--quiet":
			quiet = true
		case "-v", "--verbose":
			verbose = true
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--version":
			fmt.Printf("sifcheck version %s\n", version)
			fmt.Println("Part of go-sif - Simple Image Format library")
			os.Exit(0)
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				printUsage()
				os.Exit(2)
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input files specified")
		printUsage()
		os.Exit(2)
	}

	invalid := false
	failed := false
	for _, filename := range files {
		result, err := checkFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", filename, err)
			failed = true
			continue
		}
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: invalid: %v\n", filename, result.Err)
			invalid = true
			continue
		}
		if !quiet {
			printResult(result, verbose)
		}
	}

	switch {
	case failed:
		os.Exit(2)
	case invalid:
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: sifcheck [-q|--quiet] [-v|--verbose] <filename> [<filename> ...]")
}

func printResult(r *CheckResult, verbose bool) {
	wrap := ""
	if r.GzipWrap {
		wrap = " (gzip wrapped)"
	}
	fmt.Printf("%s: valid%s, %dx%d, %d slice(s)\n",
		r.Filename, wrap, r.Descriptor.Width, r.Descriptor.Height, len(r.Slices))
	if !verbose {
		return
	}
	for i, s := range r.Slices {
		cfg := compression.ParseFlags(s.Flags)
		fmt.Printf("  slice %d: height %d, payload %d bytes, predictor %d, bias %d, tile height %d, 2d=%t, dict=%t\n",
			i, s.Height, s.PayloadSize, cfg.Predictor, cfg.Bias, cfg.TileHeight(),
			cfg.Use2DPrediction, cfg.UseContextualDict)
	}
}

// checkFile reads, unwraps and fully decodes one file. I/O problems are
// returned as the second value; format problems land in CheckResult.Err.
func checkFile(filename string) (*CheckResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	result := &CheckResult{Filename: filename}

	if bytes.HasPrefix(data, []byte{0x1F, 0x8B}) {
		result.GzipWrap = true
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			result.Err = err
			return result, nil
		}
		unwrapped, err := io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			result.Err = err
			return result, nil
		}
		data = unwrapped
	}

	if _, _, err := sif.Decompress(data); err != nil {
		result.Err = err
		return result, nil
	}
	desc, slices, err := sif.Info(data)
	if err != nil {
		result.Err = err
		return result, nil
	}
	result.Descriptor = desc
	result.Slices = slices
	return result, nil
}
