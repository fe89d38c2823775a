package images

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	img := gradient(16, 16)

	var jpg, gf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, img, nil))
	require.NoError(t, gif.Encode(&gf, img, nil))

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", encodePNG(t, img), "image/png"},
		{"jpeg", jpg.Bytes(), "image/jpeg"},
		{"gif", gf.Bytes(), "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_Rejects(t *testing.T) {
	_, err := Detect(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = Detect([]byte("just some text, not a picture"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	// Valid PNG signature with a truncated body.
	truncated := encodePNG(t, gradient(8, 8))[:20]
	_, err = Detect(truncated)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = Detect(make([]byte, MaxAvatarBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(encodePNG(t, gradient(200, 100)))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	again, err := ComputeBlurHash(encodePNG(t, gradient(200, 100)))
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	_, err = ComputeBlurHash([]byte("nope"))
	assert.Error(t, err)
}

func TestThumbnail_KeepsAspect(t *testing.T) {
	thumb := thumbnail(gradient(400, 100))
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 16, thumb.Bounds().Dy())

	small := gradient(10, 10)
	assert.Same(t, small, thumbnail(small))
}
