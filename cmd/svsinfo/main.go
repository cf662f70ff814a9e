package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/urfave/cli/v2"

	"github.com/fumiama/svs"
)

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	var allow level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		allow = level.AllowDebug()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowInfo()
	}
	return level.NewFilter(logger, allow)
}

func openSlide(c *cli.Context, logger log.Logger) (*svs.Reader, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit(fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage), 2)
	}
	return svs.OpenFile(c.Args().First(),
		svs.WithLogger(logger),
		svs.WithMaxDirectories(c.Int("max-directories")),
		svs.WithTileCache(c.Int64("cache-bytes")),
	)
}

// withSlide opens the slide named by the only argument and runs fn on it.
func withSlide(fn func(*cli.Context, *svs.Reader, log.Logger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		logger := newLogger(c.String("log-level"))
		r, err := openSlide(c, logger)
		if err != nil {
			return err
		}
		defer r.Close()
		return fn(c, r, logger)
	}
}

func printDirectories(w io.Writer, t *svs.TIFF) {
	for i, d := range t.Headers.Directories {
		fmt.Fprintf(w, "directory %d at offset %d, %d entries\n", i, d.Offset, len(d.Entries))
		for _, e := range d.Entries {
			where := "inline"
			if inline, off := e.Location(); inline == nil {
				where = fmt.Sprintf("at %d", off)
			}
			fmt.Fprintf(w, "  %-26s %-9s count %-8d %s\n", e.Tag, e.Type, e.Count, where)
		}
	}
}

func printLayer(w io.Writer, name string, l *svs.LayerInfo) {
	if l.TileWidth == 0 {
		fmt.Fprintf(w, "%s: directory %d, %dx%d, %d strips of %d rows, compression %d\n",
			name, l.Directory, l.ImageWidth, l.ImageHeight, l.NumTiles(), l.RowsPerStrip, l.Compression)
		return
	}
	fmt.Fprintf(w, "%s: directory %d, %dx%d, tiles %dx%d of %dx%d (%d), compression %d\n",
		name, l.Directory, l.ImageWidth, l.ImageHeight, l.NumTilesX, l.NumTilesY,
		l.TileWidth, l.TileHeight, l.NumTiles(), l.Compression)
}

func info(c *cli.Context, r *svs.Reader, _ log.Logger) error {
	out := c.App.Writer
	if c.Bool("directories") {
		printDirectories(out, r.TIFF())
		fmt.Fprintln(out)
	}
	for i := range r.Headers.Layers {
		scale, err := r.LayerScale(i)
		if err != nil {
			return err
		}
		printLayer(out, fmt.Sprintf("layer %d (scale %.4f)", i, scale), &r.Headers.Layers[i])
	}
	if r.Headers.Thumbnail != nil {
		printLayer(out, "thumbnail", r.Headers.Thumbnail)
	}
	names := make([]string, 0, len(r.Headers.Associated))
	for name := range r.Headers.Associated {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printLayer(out, name, r.Headers.Associated[name])
	}

	if r.Properties.Header != "" {
		fmt.Fprintf(out, "\n%s\n", r.Properties.Header)
	}
	keys := make([]string, 0, len(r.Properties.Values))
	for k := range r.Properties.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s = %s\n", k, r.Properties.Values[k])
	}
	return nil
}

func tile(c *cli.Context, r *svs.Reader, logger log.Logger) error {
	layer, id := c.Int("layer"), c.Int("tile")
	var (
		b   []byte
		err error
	)
	if c.Bool("decode") {
		b, err = r.ReadTile(layer, id)
	} else {
		b, err = r.ReadTileCompressed(layer, id)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String("output"), b, 0o644); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote tile", "layer", layer, "tile", id, "bytes", len(b), "file", c.String("output"))
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func thumbnail(c *cli.Context, r *svs.Reader, logger log.Logger) error {
	var (
		img *image.RGBA
		err error
	)
	if name := c.String("associated"); name != "" {
		img, err = r.Associated(name)
	} else {
		img, err = r.Thumbnail()
	}
	if err != nil {
		return err
	}
	if err := writePNG(c.String("output"), img); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote image", "width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "file", c.String("output"))
	return nil
}

func region(c *cli.Context, r *svs.Reader, logger log.Logger) error {
	x, y := c.Int("x"), c.Int("y")
	rect := image.Rect(x, y, x+c.Int("width"), y+c.Int("height"))
	img, err := r.ReadRegionScaled(rect, c.Float64("downsample"))
	if err != nil {
		return err
	}
	if err := writePNG(c.String("output"), img); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote region", "layer", r.BestLayerForDownsample(c.Float64("downsample")),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "file", c.String("output"))
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "svsinfo",
		Usage: "inspect Aperio SVS whole-slide images",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-directories", Value: svs.DefaultMaxDirectories, Usage: "maximum directories to walk", EnvVars: []string{"SVS_MAX_DIRECTORIES"}},
			&cli.Int64Flag{Name: "cache-bytes", Value: 0, Usage: "compressed tile cache size, 0 disables", EnvVars: []string{"SVS_CACHE_BYTES"}},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", EnvVars: []string{"SVS_LOG_LEVEL"}},
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print the pyramid, associated images and slide properties",
				ArgsUsage: "file.svs",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "directories", Aliases: []string{"d"}, Usage: "also dump every directory entry"},
				},
				Action: withSlide(info),
			},
			{
				Name:      "tile",
				Usage:     "extract one tile",
				ArgsUsage: "file.svs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "layer", Aliases: []string{"l"}},
					&cli.IntFlag{Name: "tile", Aliases: []string{"t"}},
					&cli.BoolFlag{Name: "decode", Usage: "write decoded interleaved pixels instead of the stored bytes"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "tile.bin"},
				},
				Action: withSlide(tile),
			},
			{
				Name:      "thumbnail",
				Usage:     "write the thumbnail or an associated image as PNG",
				ArgsUsage: "file.svs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "associated", Aliases: []string{"a"}, Usage: "associated image name, e.g. label or macro"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "thumbnail.png"},
				},
				Action: withSlide(thumbnail),
			},
			{
				Name:      "region",
				Usage:     "write a region, in layer 0 coordinates, as PNG",
				ArgsUsage: "file.svs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "x"},
					&cli.IntFlag{Name: "y"},
					&cli.IntFlag{Name: "width", Value: 1024},
					&cli.IntFlag{Name: "height", Value: 1024},
					&cli.Float64Flag{Name: "downsample", Value: 1},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "region.png"},
				},
				Action: withSlide(region),
			},
		},
	}
}

// Inspect an SVS slide: list its directories and pyramid, or extract tiles,
// the thumbnail, associated images and regions.
func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger := newLogger("error")
		level.Error(logger).Log("msg", "svsinfo failed", "err", err)
		os.Exit(1)
	}
}
