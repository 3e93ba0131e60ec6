package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

const (
	DefaultMaxWidth    = 1024
	DefaultJPEGQuality = 85
	// DefaultMaxPixels bounds the decoded size of an upload, whatever its
	// byte size.
	DefaultMaxPixels = 50_000_000
)

var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJPEG, FormatPNG:
		return f, nil
	case "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unknown image format %q", s)
	}
}

type Options struct {
	// MaxWidth of 0 keeps the original size.
	MaxWidth    int
	Format      Format
	JPEGQuality int
	// MaxPixels of 0 means DefaultMaxPixels.
	MaxPixels int
}

// Encoder turns an uploaded screenshot into a data URI the model can read.
type Encoder struct {
	opts Options
}

func NewEncoder(opts Options) *Encoder {
	if opts.Format == "" {
		opts.Format = FormatJPEG
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	return &Encoder{opts: opts}
}

// Encode decodes r, downsamples it to the configured width and re-encodes it
// as a base64 data URI.
func (e *Encoder) Encode(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	// header only, so oversized images are refused before any pixel buffer exists
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(e.opts.MaxPixels) {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, e.opts.MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	img = Resize(img, e.opts.MaxWidth)

	var buf bytes.Buffer
	var mime string
	switch e.opts.Format {
	case FormatPNG:
		mime = "image/png"
		err = png.Encode(&buf, img)
	default:
		mime = "image/jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.opts.JPEGQuality})
	}
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", mime, err)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Resize scales img down to maxWidth keeping its aspect ratio. Images that are
// already narrow enough are returned unchanged.
func Resize(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	height := int(float64(b.Dy()) * float64(maxWidth) / float64(b.Dx()))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
