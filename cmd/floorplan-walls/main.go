package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/floorplan-walls/internal/config"
	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/ironsheep/floorplan-walls/internal/metrics"
	"github.com/ironsheep/floorplan-walls/internal/ocr"
	"github.com/ironsheep/floorplan-walls/internal/pipeline"
	"github.com/ironsheep/floorplan-walls/internal/render"
	"github.com/ironsheep/floorplan-walls/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "floorplan-walls %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			if info := ocr.GetInfo(); info.Available {
				fmt.Fprintf(stdout, "  Tesseract:  %s (%s)\n", info.Version, info.Backend)
			} else {
				fmt.Fprintln(stdout, "  Tesseract:  not available")
			}
			return 0
		case "--help", "-h", "help":
			printUsage(stdout)
			return 0
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fail(stderr, err)
	}
	logger.SetLevel(cfg.LogLevel)

	opts := pipeline.DefaultOptions()
	opts.DetectSymbols = cfg.DetectSymbols
	opts.TextMasker = textMasker(cfg)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.WithError(err).Warn("metrics endpoint stopped")
			}
		}()
	}

	if len(args) > 0 && args[0] == "serve" {
		logger.WithFields(map[string]interface{}{
			"version":   Version,
			"text_mask": cfg.TextMask,
		}).Info("floorplan-walls MCP server starting")
		if err := server.New(opts).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fail(stderr, err)
		}
		return 0
	}

	return detect(ctx, args, opts, stdout, stderr)
}

func textMasker(cfg *config.Config) pipeline.TextMasker {
	switch cfg.TextMask {
	case config.TextMaskOCR:
		return ocr.NewMasker(cfg.OCRLanguage)
	case config.TextMaskHeuristic:
		return pipeline.HeuristicMasker()
	default:
		return nil
	}
}

func detect(ctx context.Context, args []string, opts pipeline.Options, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("floorplan-walls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "floor plan scan to analyse (PNG, JPEG or GIF)")
	debugDir := fs.String("debug-dir", "", "write cleaned.png, ridges.png and edges.png here")
	overlay := fs.String("overlay", "", "write the wall overlay image to this path")
	plotPath := fs.String("plot", "", "write a vector plot of the walls to this path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		return fail(stderr, errors.New("--input is required"))
	}
	opts.KeepArtifacts = *debugDir != ""

	gray, err := imaging.LoadGray(*input)
	if err != nil {
		return fail(stderr, fmt.Errorf("failed to load %s: %w", *input, err))
	}
	res, err := pipeline.Run(ctx, gray, opts)
	if err != nil {
		return fail(stderr, err)
	}

	// Debug outputs never discard the result.
	if *debugDir != "" {
		if err := writeArtifacts(*debugDir, res.Artifacts); err != nil {
			logger.WithError(err).Warn("failed to write debug artefacts")
		}
	}
	if *overlay != "" {
		if err := render.SaveOverlay(*overlay, gray, res.Walls, res.DetectedSymbols, render.DefaultOverlayOptions()); err != nil {
			logger.WithError(err).Warn("failed to write overlay")
		}
	}
	if *plotPath != "" {
		if err := render.SavePlot(*plotPath, filepath.Base(*input), res.Walls, res.DetectedSymbols); err != nil {
			logger.WithError(err).Warn("failed to write plot")
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func writeArtifacts(dir string, a *pipeline.Artifacts) error {
	if a == nil {
		return errors.New("no artefacts were kept")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, m := range map[string]*imaging.Mask{
		"cleaned.png": a.Cleaned,
		"ridges.png":  a.Ridges,
		"edges.png":   a.Edges,
	} {
		if m == nil {
			continue
		}
		if err := imgio.Save(filepath.Join(dir, name), m.Gray(), imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
	}
	return nil
}

// fail reports err as {"error": "..."} on stderr.
func fail(stderr io.Writer, err error) int {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintln(stderr, string(b))
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "floorplan-walls - wall detection for scanned floor plans")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floorplan-walls --input scan.png [--debug-dir DIR] [--overlay FILE] [--plot FILE]")
	fmt.Fprintln(w, "  floorplan-walls serve")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  FLOORPLAN_LOG_LEVEL       debug, info, warn or error (default info)")
	fmt.Fprintln(w, "  FLOORPLAN_TEXT_MASK       ocr, heuristic or none (default ocr)")
	fmt.Fprintln(w, "  FLOORPLAN_OCR_LANG        Tesseract language (default eng)")
	fmt.Fprintln(w, "  FLOORPLAN_METRICS_ADDR    host:port for /metrics (default off)")
	fmt.Fprintln(w, "  FLOORPLAN_DETECT_SYMBOLS  detect light fixtures (default true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The result document is written to stdout; logs go to stderr.")
	fmt.Fprintln(w, "In serve mode the MCP protocol runs over stdin/stdout.")
}
