package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 200, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func TestProcessJPEG(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodeJPEG(100, 80)))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if photo.Width != 100 || photo.Height != 80 {
		t.Errorf("expected 100x80, got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessPNGBecomesJPEG(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(50, 50)))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg output, got %s", photo.MIME)
	}
	if _, err := jpeg.Decode(bytes.NewReader(photo.Data)); err != nil {
		t.Errorf("output is not a valid JPEG: %v", err)
	}
}

func TestProcessDownscalesLandscape(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodeJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.Width != PhotoSize || photo.Height != PhotoSize/2 {
		t.Errorf("expected %dx%d, got %dx%d", PhotoSize, PhotoSize/2, photo.Width, photo.Height)
	}
}

func TestProcessDownscalesPortrait(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(600, 3000)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.Height != PhotoSize || photo.Width != 204 {
		t.Errorf("expected 204x%d, got %dx%d", PhotoSize, photo.Width, photo.Height)
	}
}

func TestProcessRejectsText(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("this is not an image")))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestProcessRejectsGIF(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x00\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")
	_, err := Process(bytes.NewReader(gif))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for GIF, got %v", err)
	}
}

func TestProcessRejectsOversized(t *testing.T) {
	data := make([]byte, MaxUploadSize+10)
	copy(data, encodeJPEG(10, 10))
	_, err := Process(bytes.NewReader(data))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	photo, _ := Process(bytes.NewReader(encodeJPEG(800, 400)))

	thumb, err := Thumbnail(photo.Data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if thumb.Width != ThumbnailSize || thumb.Height != ThumbnailSize/2 {
		t.Errorf("expected %dx%d, got %dx%d", ThumbnailSize, ThumbnailSize/2, thumb.Width, thumb.Height)
	}

	if _, err := Thumbnail([]byte("junk")); err == nil {
		t.Error("expected error for invalid photo data")
	}
}
