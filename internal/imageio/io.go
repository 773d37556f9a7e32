// Package imageio reads and writes resample.Image values as PNG, JPEG,
// BMP and TIFF files.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/resample"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned for an unknown or unregistered format.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")

	// ErrEmptyData is returned when there is nothing to decode.
	ErrEmptyData = errors.New("imageio: empty data")
)

// DefaultJPEGQuality is used by Save and Encode for JPEG output.
const DefaultJPEGQuality = 90

// Load reads the image at path. The format is detected from the content,
// so the extension does not have to match.
func Load(path string) (resample.Image, Format, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return resample.Image{}, FormatUnknown, fmt.Errorf("imageio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadBytes decodes an image held in memory.
func LoadBytes(data []byte) (resample.Image, Format, error) {
	if len(data) == 0 {
		return resample.Image{}, FormatUnknown, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes any registered format and converts the result to
// straight-alpha RGBA.
func Decode(r io.Reader) (resample.Image, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return resample.Image{}, FormatUnknown, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return resample.Image{}, FormatUnknown, fmt.Errorf("imageio: decode: %w", err)
	}
	format, _ := ParseFormat(name)
	return FromImage(img), format, nil
}

// FromImage converts any image.Image to a resample.Image. An *image.NRGBA
// whose pixels are tightly packed at the origin is shared, not copied.
func FromImage(img image.Image) resample.Image {
	if n, ok := img.(*image.NRGBA); ok {
		return resample.FromNRGBA(n)
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return resample.FromNRGBA(n)
}

// Save writes img to path in the format implied by its extension.
func Save(path string, img resample.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imageio: create file: %w", err)
	}

	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Encode writes img to w. JPEG output drops alpha and uses
// DefaultJPEGQuality.
func Encode(w io.Writer, img resample.Image, format Format) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("imageio: encode: %w", err)
	}
	n := img.NRGBA()

	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, n)
	case FormatJPEG:
		err = jpeg.Encode(w, n, &jpeg.Options{Quality: DefaultJPEGQuality})
	case FormatBMP:
		err = bmp.Encode(w, n)
	case FormatTIFF:
		err = tiff.Encode(w, n, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("imageio: encode %v: %w", format, err)
	}
	return nil
}
