// Package imaging turns a user-picked file into either a pass-through image
// payload or a cropped JPEG, with upfront validation so nothing is decoded
// or uploaded for invalid input.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"math"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
)

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrNotImage    = errors.New("not an image file")
	ErrTooLarge    = errors.New("file too large")
	ErrUndecodable = errors.New("image data cannot be decoded")
	ErrEmptyCrop   = errors.New("crop selection is empty")
)

const (
	// jpegQuality matches the original export quality of the crop editor.
	jpegQuality = 90
	// maxOutputEdge caps the long edge of a cropped raster before upload.
	maxOutputEdge = 1600
)

// Validator runs the client-side checks that must fail fast, before any
// preview is created or any network call is made.
type Validator struct {
	MaxSize int64
}

// ValidateUpload rejects empty files, oversized files and non-image MIME
// types. The returned error carries the user-facing message.
func (v Validator) ValidateUpload(mimeType string, size int64) error {
	if size == 0 {
		return fmt.Errorf("%w: the selected file has no content", ErrEmptyFile)
	}
	if v.MaxSize > 0 && size > v.MaxSize {
		return fmt.Errorf("%w: File size must be less than %dMB", ErrTooLarge, v.MaxSize/1024/1024)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return fmt.Errorf("%w: Please select a valid image file", ErrNotImage)
	}
	return nil
}

// Asset is a committed image payload: either the raw selection passed
// through untouched or the output of an applied crop.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
	Cropped     bool
}

// Rect is a crop rectangle in displayed-image pixel coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// InitialCrop seeds the crop editor: a 150px-wide rectangle at (10,10)
// whose height follows the required aspect ratio. A ratio of zero or less
// means no fixed ratio, so the seed is square and the editor is free-form.
func InitialCrop(aspectRatio float64) Rect {
	const baseWidth = 150
	height := float64(baseWidth)
	if aspectRatio > 0 {
		height = math.Round(baseWidth / aspectRatio)
	}
	return Rect{X: 10, Y: 10, Width: baseWidth, Height: height}
}

// Decode reads a full image into memory. A payload whose declared type is
// image but cannot be decoded comes back as ErrUndecodable.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, format, nil
}

// Crop rasterizes the selected region into a fresh JPEG. The selection is
// expressed against the displayed size, so it is scaled by the
// natural/displayed factor before cutting. Output dimensions are the scaled
// selection, within rounding, capped at maxOutputEdge on the long edge.
func Crop(src image.Image, sel Rect, displayW, displayH int) (Asset, error) {
	const op = "imaging.Crop"

	bounds := src.Bounds()
	scaleX, scaleY := 1.0, 1.0
	if displayW > 0 {
		scaleX = float64(bounds.Dx()) / float64(displayW)
	}
	if displayH > 0 {
		scaleY = float64(bounds.Dy()) / float64(displayH)
	}

	x := int(math.Round(sel.X * scaleX))
	y := int(math.Round(sel.Y * scaleY))
	w := int(math.Round(sel.Width * scaleX))
	h := int(math.Round(sel.Height * scaleY))

	// clamp to the source raster
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > bounds.Dx() {
		w = bounds.Dx() - x
	}
	if y+h > bounds.Dy() {
		h = bounds.Dy() - y
	}
	if w <= 0 || h <= 0 {
		return Asset{}, ErrEmptyCrop
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), src, bounds.Min.Add(image.Pt(x, y)), draw.Src)

	var scaled image.Image = out
	if w > maxOutputEdge || h > maxOutputEdge {
		if w >= h {
			scaled = resize.Resize(maxOutputEdge, 0, out, resize.Lanczos3)
		} else {
			scaled = resize.Resize(0, maxOutputEdge, out, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	if buf.Len() == 0 {
		return Asset{}, fmt.Errorf("%s: %w", op, ErrEmptyCrop)
	}

	return Asset{
		Filename:    "cropped-image.jpg",
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
		Cropped:     true,
	}, nil
}
