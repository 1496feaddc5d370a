// Command plfilter applies a permutohedral bilateral filter to a PNG
// image, using the image itself as the edge-stopping reference.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/permutohedral"
)

func main() {
	var (
		thetaAlpha float64
		thetaBeta  float64
		reverse    bool
		workers    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "plfilter <input.png> <output.png>",
		Short: "Edge-preserving bilateral filter backed by a permutohedral lattice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], float32(thetaAlpha), float32(thetaBeta), reverse, workers, verbose)
		},
	}
	cmd.Flags().Float64Var(&thetaAlpha, "theta-alpha", 8, "spatial bandwidth in pixels")
	cmd.Flags().Float64Var(&thetaBeta, "theta-beta", 0.125, "color bandwidth in [0,1] intensity units")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "run the blur passes in reverse color order")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines per phase (0 = GOMAXPROCS)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log filter phases")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(inPath, outPath string, thetaAlpha, thetaBeta float32, reverse bool, workers int, verbose bool) error {
	img, err := loadPNG(inPath)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]float32, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*w + x) * 3
			pixels[i] = float32(r) / 0xffff
			pixels[i+1] = float32(g) / 0xffff
			pixels[i+2] = float32(b) / 0xffff
		}
	}

	opts := []permutohedral.Option{permutohedral.WithWorkers(workers)}
	if verbose {
		opts = append(opts, permutohedral.WithLogger(permutohedral.NewTextLogger(slog.LevelDebug)))
	}

	shape := permutohedral.Shape{Batch: 1, Spatial: []int{h, w}, Channels: 3}
	filtered := make([]float32, len(pixels))
	if err := permutohedral.Bilateral(filtered, pixels, pixels, shape, 3, thetaAlpha, thetaBeta, reverse, opts...); err != nil {
		return fmt.Errorf("filter %s: %w", inPath, err)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			out.SetNRGBA(x, y, color.NRGBA{
				R: clamp8(filtered[i]),
				G: clamp8(filtered[i+1]),
				B: clamp8(filtered[i+2]),
				A: 0xff,
			})
		}
	}
	return writePNG(outPath, out)
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	default:
		return uint8(v*255 + 0.5)
	}
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
