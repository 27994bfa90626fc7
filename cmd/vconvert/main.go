// Command vconvert passes image files through a video pixel format and
// writes the result as PNG.
//
// Each input is converted from RGBA to the chosen format and size and back
// to RGBA, which shows the effect of chroma subsampling, bit depth,
// resampling and dithering on real pictures:
//
//	vconvert -f I420 -W 640 -m lanczos -d halftone -o out/ photo.jpg
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/vconv"
	"github.com/gogpu/vconv/video"
)

// frames recycles intermediate and output frames across files of equal size.
var frames = video.NewPool(4)

type options struct {
	outDir  string
	format  video.Format
	width   int
	height  int
	blur    float64
	config  vconv.Config
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] image...\n", os.Args[0])
		pflag.PrintDefaults()
	}

	outDir := pflag.StringP("out-dir", "o", ".", "directory for the converted PNG files")
	format := pflag.StringP("format", "f", "I420", "intermediate pixel format")
	width := pflag.IntP("width", "W", 0, "intermediate width, 0 keeps the input width")
	height := pflag.IntP("height", "H", 0, "intermediate height, 0 scales with the width")
	method := pflag.StringP("method", "m", "cubic", "resampling method: nearest, linear, cubic, sinc, lanczos")
	dither := pflag.StringP("dither", "d", "none", "dither method: none, verterr, halftone, horizerr")
	set := pflag.StringToStringP("set", "s", nil, "extra converter options as key=value")
	jobs := pflag.IntP("jobs", "j", runtime.GOMAXPROCS(0), "files converted concurrently")
	blurRadius := pflag.Float64("blur", 0, "gaussian blur radius applied before conversion")
	verbose := pflag.BoolP("verbose", "v", false, "log conversion plans")
	listKeys := pflag.Bool("list-options", false, "print the accepted option keys and exit")
	pflag.Parse()

	if *listKeys {
		for _, k := range vconv.ConfigKeys() {
			fmt.Println(k)
		}
		return
	}
	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if *verbose {
		vconv.SetLogger(log)
	}

	opts, err := parseOptions(*outDir, *format, *width, *height, *blurRadius, *method, *dither, *set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*jobs, 1))
	for _, path := range pflag.Args() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return convertFile(log, path, opts)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Info("done", "files", pflag.NArg(), "elapsed", time.Since(start).Round(time.Millisecond))
}

func parseOptions(outDir, format string, width, height int, blurRadius float64, method, dither string, set map[string]string) (options, error) {
	f, err := video.ParseFormat(format)
	if err != nil {
		return options{}, err
	}
	if width < 0 || height < 0 {
		return options{}, fmt.Errorf("invalid size %dx%d", width, height)
	}

	kv := map[string]string{"resampler-method": method, "dither-method": dither}
	for k, v := range set {
		kv[k] = v
	}
	cfg, err := vconv.ParseConfig(kv)
	if err != nil {
		return options{}, err
	}
	return options{
		outDir: outDir,
		format: f,
		width:  width,
		height: height,
		blur:   blurRadius,
		config: cfg,
	}, nil
}

// convertFile runs one image through the intermediate format.
func convertFile(log *slog.Logger, path string, opts options) error {
	img, err := imgio.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if opts.blur > 0 {
		img = blur.Gaussian(img, opts.blur)
	}
	src, err := video.FromImage(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	w, h := intermediateSize(src.Info.Width, src.Info.Height, opts.width, opts.height)
	mid := video.NewInfo(opts.format, w, h)
	out := video.NewInfo(video.FormatRGBA, w, h)

	midFrame, err := convert(src, mid, opts.config)
	if err != nil {
		return fmt.Errorf("%s: to %v: %w", path, mid, err)
	}
	defer frames.Put(midFrame)
	outFrame, err := convert(midFrame, out, opts.config)
	if err != nil {
		return fmt.Errorf("%s: from %v: %w", path, mid, err)
	}
	defer frames.Put(outFrame)

	res, err := outFrame.Image()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	dst := filepath.Join(opts.outDir, outputName(path, opts.format))
	if err := imgio.Save(dst, res, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("%s: %w", dst, err)
	}

	log.Info("converted",
		"in", path,
		"out", dst,
		"format", mid.String(),
		"frame", humanize.IBytes(uint64(mid.Size())),
		"rgba", humanize.IBytes(uint64(out.Size())),
	)
	return nil
}

func convert(src *video.Frame, out video.Info, cfg vconv.Config) (*video.Frame, error) {
	conv, err := vconv.New(src.Info, out, &cfg)
	if err != nil {
		return nil, err
	}
	defer conv.Close()

	dst, err := frames.Get(out)
	if err != nil {
		return nil, err
	}
	if err := conv.Convert(src, dst); err != nil {
		frames.Put(dst)
		return nil, err
	}
	return dst, nil
}

// intermediateSize keeps the aspect ratio when only one side is given.
func intermediateSize(inW, inH, w, h int) (int, int) {
	switch {
	case w == 0 && h == 0:
		return inW, inH
	case h == 0:
		return w, max(1, (inH*w+inW/2)/inW)
	case w == 0:
		return max(1, (inW*h+inH/2)/inH), h
	}
	return w, h
}

func outputName(path string, f video.Format) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s.%s.png", base, strings.ToLower(f.String()))
}
