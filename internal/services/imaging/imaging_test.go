package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	v := Validator{MaxSize: 10 * 1024 * 1024}

	tests := []struct {
		name     string
		mimeType string
		size     int64
		wantErr  error
	}{
		{name: "valid jpeg", mimeType: "image/jpeg", size: 1024},
		{name: "valid png at limit", mimeType: "image/png", size: 10 * 1024 * 1024},
		{name: "zero byte file", mimeType: "image/jpeg", size: 0, wantErr: ErrEmptyFile},
		{name: "oversized", mimeType: "image/jpeg", size: 10*1024*1024 + 1, wantErr: ErrTooLarge},
		{name: "not an image", mimeType: "application/pdf", size: 100, wantErr: ErrNotImage},
		{name: "missing mime type", mimeType: "", size: 100, wantErr: ErrNotImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.mimeType, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateUpload_SizeMessageInMB(t *testing.T) {
	v := Validator{MaxSize: 5 * 1024 * 1024}
	err := v.ValidateUpload("image/jpeg", 6*1024*1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File size must be less than 5MB")
}

func TestInitialCrop(t *testing.T) {
	tests := []struct {
		name       string
		aspect     float64
		wantWidth  float64
		wantHeight float64
	}{
		{name: "square", aspect: 1, wantWidth: 150, wantHeight: 150},
		{name: "banner 3:1", aspect: 3, wantWidth: 150, wantHeight: 50},
		{name: "arbitrary ratio", aspect: 1.5, wantWidth: 150, wantHeight: 100},
		{name: "zero means free-form", aspect: 0, wantWidth: 150, wantHeight: 150},
		{name: "negative means free-form", aspect: -2, wantWidth: 150, wantHeight: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := InitialCrop(tt.aspect)
			assert.Equal(t, 10.0, r.X)
			assert.Equal(t, 10.0, r.Y)
			assert.Equal(t, tt.wantWidth, r.Width)
			assert.Equal(t, tt.wantHeight, r.Height)
		})
	}
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(20, 10)))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestDecode_GarbageBehindImageMime(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not pixels")))
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestCrop_ScaleFactorAppliedToOutputSize(t *testing.T) {
	// natural 800x600 displayed at 400x300 -> scale factor 2 on both axes
	src := testImage(800, 600)

	asset, err := Crop(src, Rect{X: 10, Y: 10, Width: 100, Height: 100}, 400, 300)
	require.NoError(t, err)
	assert.True(t, asset.Cropped)
	assert.Equal(t, "image/jpeg", asset.ContentType)

	out, err := jpeg.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 200, out.Bounds().Dy())
}

func TestCrop_NoScaling(t *testing.T) {
	src := testImage(300, 200)

	asset, err := Crop(src, Rect{X: 0, Y: 0, Width: 150, Height: 50}, 300, 200)
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	assert.Equal(t, 150, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

func TestCrop_SelectionClampedToBounds(t *testing.T) {
	src := testImage(100, 100)

	asset, err := Crop(src, Rect{X: 80, Y: 80, Width: 50, Height: 50}, 100, 100)
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

func TestCrop_EmptySelectionRejected(t *testing.T) {
	src := testImage(100, 100)

	_, err := Crop(src, Rect{X: 100, Y: 100, Width: 10, Height: 10}, 100, 100)
	assert.ErrorIs(t, err, ErrEmptyCrop)

	_, err = Crop(src, Rect{X: 0, Y: 0, Width: 0, Height: 10}, 100, 100)
	assert.ErrorIs(t, err, ErrEmptyCrop)
}

func TestCrop_LongEdgeCapped(t *testing.T) {
	src := testImage(2400, 1200)

	asset, err := Crop(src, Rect{X: 0, Y: 0, Width: 2400, Height: 1200}, 2400, 1200)
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	assert.Equal(t, 1600, out.Bounds().Dx())
	assert.Equal(t, 800, out.Bounds().Dy())
}
