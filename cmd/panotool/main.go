// panotool is a CLI utility for inspecting and rendering panoramas
// without a window.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/config"
	"github.com/Faultbox/panoview/internal/detect"
	"github.com/Faultbox/panoview/internal/imageio"
	"github.com/Faultbox/panoview/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	// stderr only; stdout carries command output
	if err := logger.Init(os.Getenv("PANOTOOL_LOG"), ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch command {
	case "info":
		cmdInfo(args)
	case "render", "r":
		cmdRender(args)
	case "bench":
		cmdBench(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`panotool - equirectangular panorama utility

Usage:
  panotool <command> [options]

Commands:
  info [-min-width N] <image>        Show size, XMP projection and detection result
  render [options] [image]           Render one view to PNG (placeholder if no image)
  bench [-n frames] <image>          Compare direct and table trig strategies
  config [path]                      Write the default config file

Render options:
  -o out.png   -w 800 -h 600   -fov 110   -yaw 0 -pitch 0 (degrees)
  -look x,y    -trig direct|table   -accuracy 2048   -workers 0

Examples:
  panotool info pano.jpg
  panotool render -o view.png -yaw 90 -fov 75 pano.jpg
  panotool render -look 400,100 -trig table pano.jpg
  panotool bench -n 20 pano.jpg

Set PANOTOOL_LOG=debug for timing logs.`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	minWidth := fs.Int("min-width", detect.DefaultMinWidth, "Narrowest untagged 2:1 image treated as a panorama")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: panotool info [-min-width N] <image>")
		os.Exit(1)
	}

	path := fs.Arg(0)
	panoramic, md, err := detect.DetectFile(path, *minWidth)
	if err != nil {
		fail(err)
	}

	projection := md.ProjectionType
	if projection == "" {
		projection = "(none)"
	}
	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Format:     %s\n", md.Format)
	fmt.Printf("Size:       %dx%d\n", md.Width, md.Height)
	fmt.Printf("XMP:        %v\n", md.HasXMP)
	fmt.Printf("Projection: %s\n", projection)
	fmt.Printf("Panorama:   %v\n", panoramic)
}

func cmdRender(args []string) {
	def := config.Default()
	opts := renderOptions{}

	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "frame.png", "Output PNG path")
	fs.IntVar(&opts.Width, "w", def.Viewport.Width, "Frame width")
	fs.IntVar(&opts.Height, "h", def.Viewport.Height, "Frame height")
	fs.Float64Var(&opts.FOVDegrees, "fov", def.Viewport.FOVDegrees, "Horizontal field of view in degrees")
	fs.Float64Var(&opts.YawDegrees, "yaw", 0, "Yaw in degrees")
	fs.Float64Var(&opts.PitchDegrees, "pitch", 0, "Pitch in degrees, positive looks down")
	look := fs.String("look", "", "Turn to look at view pixel x,y before rendering")
	fs.StringVar(&opts.Trig, "trig", def.Render.Trig, "Trig strategy: direct, table")
	fs.IntVar(&opts.AccuracyFactor, "accuracy", def.Render.AccuracyFactor, "Table accuracy factor")
	fs.IntVar(&opts.Workers, "workers", def.Render.Workers, "Render workers (0 = GOMAXPROCS)")
	fs.Parse(args)

	var err error
	opts.LookX, opts.LookY, opts.Look, err = parseLook(*look)
	if err != nil {
		fail(err)
	}

	var src image.Image
	if fs.NArg() > 0 {
		img, _, err := imageio.Load(fs.Arg(0))
		if err != nil {
			logger.Warn("source unavailable, rendering placeholder", zap.String("path", fs.Arg(0)), zap.Error(err))
		} else {
			src = img
		}
	}

	start := time.Now()
	frame, err := renderFrame(opts, src)
	if err != nil {
		fail(err)
	}
	logger.Debug("frame rendered", zap.Duration("took", time.Since(start)))

	if err := imageio.SaveTo(*out, frame); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", *out, opts.Width, opts.Height)
}

func cmdBench(args []string) {
	def := config.Default()
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	frames := fs.Int("n", 10, "Frames per strategy")
	width := fs.Int("w", def.Viewport.Width, "Frame width")
	height := fs.Int("h", def.Viewport.Height, "Frame height")
	accuracy := fs.Int("accuracy", def.Render.AccuracyFactor, "Table accuracy factor")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: panotool bench [-n frames] <image>")
		os.Exit(1)
	}
	if *frames < 1 {
		*frames = 1
	}

	img, _, err := imageio.Load(fs.Arg(0))
	if err != nil {
		fail(err)
	}

	res, err := runBench(benchOptions{
		Viewport: def.ViewportFor(*width, *height),
		Frames:   *frames,
		Accuracy: *accuracy,
		Workers:  def.Render.Workers,
	}, imageio.ToRGBA(img))
	if err != nil {
		fail(err)
	}

	fmt.Printf("Image:      %s (%dx%d)\n", fs.Arg(0), img.Bounds().Dx(), img.Bounds().Dy())
	fmt.Printf("Viewport:   %dx%d, %d frames each\n", *width, *height, *frames)
	fmt.Printf("Table:      A=%d, built in %v\n", *accuracy, res.TableBuild)
	fmt.Printf("  %-8s %v/frame\n", "direct", res.Direct)
	fmt.Printf("  %-8s %v/frame\n", "table", res.Table)
	fmt.Printf("Max texel disagreement: dx=%d dy=%d\n", res.MaxDX, res.MaxDY)
}

func cmdConfig(args []string) {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", args[0])
		return
	}
	path, err := cfg.Save()
	if err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", path)
}
