package resample

import (
	"errors"
	"fmt"
	"image"
)

// Common errors for image and sampling operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("resample: invalid dimensions")

	// ErrBufferSize is returned when a pixel buffer is not exactly 4*width*height bytes.
	ErrBufferSize = errors.New("resample: buffer length does not match 4*width*height")

	// ErrImageTooSmall is returned when an image is smaller than a sampler's window.
	ErrImageTooSmall = errors.New("resample: image smaller than sampler window")

	// ErrOutOfRange is returned by bounds-checked samplers when the
	// coordinate lies outside the source image.
	ErrOutOfRange = errors.New("resample: coordinate out of range")
)

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// Image is a flat, row-major buffer of straight-alpha RGBA pixels.
//
// Image does not own its buffer: samplers only read from it and never
// retain it past a call. The invariant len(Pix) == 4*Width*Height is the
// caller's to keep; NewImage and Validate check it.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// NewImage wraps pix as an Image after checking the length invariant.
// The buffer is not copied.
func NewImage(pix []byte, width, height int) (Image, error) {
	im := Image{Pix: pix, Width: width, Height: height}
	if err := im.Validate(); err != nil {
		return Image{}, err
	}
	return im, nil
}

// Alloc returns a zeroed (transparent black) image of the given size.
func Alloc(width, height int) (Image, error) {
	if width <= 0 || height <= 0 {
		return Image{}, ErrInvalidDimensions
	}
	return Image{
		Pix:    make([]byte, BytesPerPixel*width*height),
		Width:  width,
		Height: height,
	}, nil
}

// Validate reports whether the dimensions are positive and the buffer
// length matches them.
func (im Image) Validate() error {
	if im.Width <= 0 || im.Height <= 0 {
		return ErrInvalidDimensions
	}
	if len(im.Pix) != BytesPerPixel*im.Width*im.Height {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrBufferSize, len(im.Pix), im.Width, im.Height)
	}
	return nil
}

// ValidateFor checks the image against the preconditions of the given
// interpolation mode. Bicubic sampling needs at least a 4x4 image.
func (im Image) ValidateFor(mode Mode) error {
	if err := im.Validate(); err != nil {
		return err
	}
	n := mode.MinSize()
	if im.Width < n || im.Height < n {
		return fmt.Errorf("%w: %s needs %dx%d, got %dx%d", ErrImageTooSmall, mode, n, n, im.Width, im.Height)
	}
	return nil
}

// Offset returns the index of the first byte of pixel (x, y) in Pix.
// It does not check bounds.
func (im Image) Offset(x, y int) int {
	return BytesPerPixel * (x + y*im.Width)
}

// Pixel returns a mutable reference to pixel (x, y).
// It panics if the coordinates are outside the image.
func (im Image) Pixel(x, y int) *[4]byte {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		panic(fmt.Sprintf("resample: pixel (%d,%d) outside %dx%d image", x, y, im.Width, im.Height))
	}
	i := im.Offset(x, y)
	return (*[4]byte)(im.Pix[i : i+BytesPerPixel])
}

// Fill sets every pixel to c.
func (im Image) Fill(c [4]byte) {
	for i := 0; i+BytesPerPixel <= len(im.Pix); i += BytesPerPixel {
		copy(im.Pix[i:i+BytesPerPixel], c[:])
	}
}

// clampedPixel returns the pixel nearest to (fx, fy), replicating the
// border for indices outside the image. fx and fy are integral values
// carried as floats so far-away coordinates never overflow an int.
func (im Image) clampedPixel(fx, fy float32) *[4]byte {
	x := clampIndex(fx, im.Width)
	y := clampIndex(fy, im.Height)
	i := im.Offset(x, y)
	return (*[4]byte)(im.Pix[i : i+BytesPerPixel])
}

// clampIndex clamps v to [0, size-1]. NaN maps to 0.
func clampIndex(v float32, size int) int {
	if !(v > 0) {
		return 0
	}
	if v >= float32(size-1) {
		return size - 1
	}
	return int(v)
}

// FromNRGBA returns an Image for img. When img is tightly packed and its
// bounds start at the origin the pixel buffer is shared; otherwise the
// pixels are copied.
func FromNRGBA(img *image.NRGBA) Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowBytes := BytesPerPixel * w
	if b.Min == (image.Point{}) && img.Stride == rowBytes {
		return Image{Pix: img.Pix[:rowBytes*h], Width: w, Height: h}
	}
	pix := make([]byte, rowBytes*h)
	for y := range h {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*rowBytes:(y+1)*rowBytes], img.Pix[start:start+rowBytes])
	}
	return Image{Pix: pix, Width: w, Height: h}
}

// NRGBA returns an *image.NRGBA that shares the Image's buffer.
func (im Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    im.Pix,
		Stride: BytesPerPixel * im.Width,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}
