package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxAvatarBytes is the largest accepted profile picture.
const MaxAvatarBytes = 5 << 20

// Upload validation errors.
var (
	ErrEmptyImage       = errors.New("image data is empty")
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Detect sniffs data and returns its MIME type. The declared Content-Type of
// an upload is ignored; only the bytes count.
func Detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxAvatarBytes {
		return "", ErrImageTooLarge
	}

	mime := http.DetectContentType(data)
	format, ok := allowedTypes[mime]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}

	_, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || decoded != format {
		return "", fmt.Errorf("%w: undecodable %s", ErrUnsupportedImage, format)
	}
	return mime, nil
}
