package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/gridsplit/internal/export"
	"github.com/kiesman99/gridsplit/internal/render"
	"github.com/kiesman99/gridsplit/pkg/grid"
)

func runSplit(cmd *cobra.Command, input string) error {
	cfg, err := gridFromConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filename, img, err := openImage(ctx, input)
	if err != nil {
		return err
	}

	if s := viper.GetString("crop"); s != "" {
		rect, err := parseCrop(s)
		if err != nil {
			return err
		}
		if img, err = render.Crop(img, rect); err != nil {
			return err
		}
	}

	base := viper.GetString("name")
	if base == "" {
		base = render.BaseName(filename)
	}

	size := img.Bounds().Size()
	rects := grid.ComputeRectangles(size.X, size.Y, cfg)

	if viper.GetBool("dry_run") {
		return printRectangles(cmd.OutOrStdout(), base, rects)
	}

	compression, err := render.ParseCompression(viper.GetString("render.compression"))
	if err != nil {
		return err
	}
	renderer := render.New(render.Options{
		Workers:     viper.GetInt("render.workers"),
		Compression: compression,
		Logger:      logger,
	})

	tiles, err := renderer.Render(ctx, img, rects, base)
	if err != nil {
		return err
	}

	w, dest, err := newWriter(ctx)
	if err != nil {
		return err
	}

	var written []string
	if viper.GetBool("zip") {
		var buf bytes.Buffer
		if err := export.WriteArchive(&buf, tiles); err != nil {
			return err
		}
		name := export.ArchiveName(base)
		if err := w.Write(ctx, name, buf.Bytes()); err != nil {
			return err
		}
		written = append(written, name)
	} else if written, err = export.WriteTiles(ctx, w, tiles); err != nil {
		return err
	}

	if viper.GetBool("overlay") {
		data, err := render.Overlay(img, cfg)
		if err != nil {
			return err
		}
		name := base + "_grid." + render.Ext
		if err := w.Write(ctx, name, data); err != nil {
			return err
		}
		written = append(written, name)
	}

	logger.WithFields(logrus.Fields{
		"input":       input,
		"grid":        fmt.Sprintf("%dx%d", cfg.Rows, cfg.Cols),
		"tiles":       len(tiles),
		"destination": dest,
	}).Info("split complete")

	for _, name := range written {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

// gridFromConfig assembles the grid from flags, environment and config file
func gridFromConfig() (grid.Config, error) {
	cfg := grid.Config{
		Rows: viper.GetInt("grid.rows"),
		Cols: viper.GetInt("grid.cols"),
	}

	var err error
	if cfg.RowPositions, err = parsePositions("row_positions", viper.GetStringSlice("grid.row_positions")); err != nil {
		return cfg, err
	}
	if cfg.ColPositions, err = parsePositions("col_positions", viper.GetStringSlice("grid.col_positions")); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// parsePositions accepts repeated values as well as comma separated lists
func parsePositions(field string, values []string) ([]float64, error) {
	var out []float64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			p, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, &grid.ConfigError{Field: field, Message: fmt.Sprintf("invalid position %q", part)}
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// parseCrop parses "x,y,width,height"
func parseCrop(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("crop must be in format 'x,y,width,height'")
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid crop value %q: %w", p, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("crop width and height must be positive")
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// openImage reads a local file or downloads an http(s) URL
func openImage(ctx context.Context, input string) (string, image.Image, error) {
	if render.IsURL(input) {
		return render.NewFetcher(viper.GetString("user_agent"), 0).Fetch(ctx, input)
	}

	f, err := appFs.Open(input)
	if err != nil {
		return "", nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := render.Decode(f)
	if err != nil {
		return "", nil, err
	}
	return input, img, nil
}

// newWriter picks the S3 bucket when one is configured, the output directory otherwise
func newWriter(ctx context.Context) (export.Writer, string, error) {
	s3cfg := export.S3Config{
		Endpoint:  viper.GetString("s3.endpoint"),
		Region:    viper.GetString("s3.region"),
		AccessKey: viper.GetString("s3.access_key"),
		SecretKey: viper.GetString("s3.secret_key"),
		Bucket:    viper.GetString("s3.bucket"),
		Prefix:    viper.GetString("s3.prefix"),
	}
	if s3cfg.Bucket != "" {
		w, err := export.NewS3Writer(ctx, s3cfg)
		if err != nil {
			return nil, "", err
		}
		return w, "s3://" + s3cfg.Bucket + "/" + s3cfg.Prefix, nil
	}

	w, err := export.NewDirWriter(appFs, viper.GetString("output"))
	if err != nil {
		return nil, "", err
	}
	return w, w.Dir(), nil
}

func printRectangles(out io.Writer, base string, rects []grid.Rect) error {
	for _, r := range rects {
		p := r.Pixels
		if _, err := fmt.Fprintf(out, "%s  x=%d y=%d %dx%d\n",
			render.TileFilename(base, r.Row, r.Col), p.Min.X, p.Min.Y, p.Dx(), p.Dy()); err != nil {
			return err
		}
	}
	return nil
}
