package ingest

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestTranscodePNGToJPEG(t *testing.T) {
	out, ext, err := Transcode(pngBytes(t))
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if ext != ".jpg" {
		t.Errorf("ext = %q, want .jpg", ext)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output is not valid jpeg: %v", err)
	}
}

func TestTranscodeRejectsGarbage(t *testing.T) {
	_, _, err := Transcode([]byte("not an image at all"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("got %v, want ErrUnsupportedImage", err)
	}
}
