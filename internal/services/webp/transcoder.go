package webp

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"ziptowebp/internal/config"
	"ziptowebp/internal/services"
)

// Transcoder decodes images and re-encodes them as WebP. It holds only
// immutable settings and is safe for concurrent use with distinct outputs.
type Transcoder struct {
	quality    int
	lossless   bool
	autoOrient bool
}

// New builds a transcoder from the WebP configuration section.
func New(cfg config.WebP) (*Transcoder, error) {
	if cfg.Quality < 0 || cfg.Quality > 100 {
		return nil, fmt.Errorf("webp quality %d outside 0-100", cfg.Quality)
	}
	return &Transcoder{
		quality:    cfg.Quality,
		lossless:   cfg.Lossless,
		autoOrient: cfg.AutoOrient,
	}, nil
}

// Transcode decodes inputPath and writes a WebP encoding of it to outputPath.
// A failed encode removes whatever was written to outputPath.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := imaging.Open(inputPath, imaging.AutoOrientation(t.autoOrient))
	if err != nil {
		kind := services.KindUnsupportedOrCorrupt
		if errors.Is(err, fs.ErrNotExist) {
			kind = services.KindNotFound
		}
		return &services.ImageError{Kind: kind, Op: "decode", Path: inputPath, Err: err}
	}

	if err := t.encode(img, outputPath); err != nil {
		_ = os.Remove(outputPath)
		return &services.ImageError{Kind: services.KindWriteFailed, Op: "encode", Path: outputPath, Err: err}
	}
	return nil
}

func (t *Transcoder) encode(img image.Image, outputPath string) error {
	options, err := t.options()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := webp.Encode(out, img, options); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// options are built per call; the encoder options struct is not shared
// between concurrent encodes.
func (t *Transcoder) options() (*encoder.Options, error) {
	if t.lossless {
		return encoder.NewLosslessEncoderOptions(encoder.PresetDefault, losslessLevel(t.quality))
	}
	return encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(t.quality))
}

// losslessLevel maps the 0-100 quality scale onto libwebp's 0-9 effort levels.
func losslessLevel(quality int) int {
	level := quality / 10
	if level > 9 {
		level = 9
	}
	return level
}
