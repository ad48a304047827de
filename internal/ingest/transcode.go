package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// jpegQuality is the fixed lossy quality for staged pages.
const jpegQuality = 80

// ErrUnsupportedImage means the payload could not be decoded as a raster
// image; the page is skipped.
var ErrUnsupportedImage = errors.New("unsupported image")

// Transcode re-encodes any supported raster payload (jpeg, png, gif, webp)
// as JPEG at the fixed quality and returns the new bytes plus the output
// extension.
func Transcode(data []byte) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), ".jpg", nil
}
