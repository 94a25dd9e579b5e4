package imagehost

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessResizesWideImages(t *testing.T) {
	data, err := Process(bytes.NewReader(pngOf(t, 3200, 200)), MaxWidth)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != MaxWidth || cfg.Height != 100 {
		t.Errorf("size = %dx%d, want %dx100", cfg.Width, cfg.Height, MaxWidth)
	}
}

func TestProcessKeepsNarrowImages(t *testing.T) {
	data, err := Process(bytes.NewReader(pngOf(t, 640, 480)), MaxWidth)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", cfg.Width, cfg.Height)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	if _, err := Process(strings.NewReader("not an image"), MaxWidth); err == nil {
		t.Error("expected error for non-image input")
	}
}

func TestLocalUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	l := NewLocal(dir, "/public/uploads")
	ctx := context.Background()

	res, err := l.Upload(ctx, "My Hero Shot.PNG", bytes.NewReader(pngOf(t, 100, 50)))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.URL != "/public/uploads/my-hero-shot.jpg" {
		t.Errorf("result = %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "my-hero-shot.jpg")); err != nil {
		t.Errorf("file not written: %v", err)
	}

	res, err = l.Upload(ctx, "my hero shot.png", bytes.NewReader(pngOf(t, 100, 50)))
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "/public/uploads/my-hero-shot-2.jpg" {
		t.Errorf("second URL = %q, want my-hero-shot-2.jpg", res.URL)
	}
}

func TestLocalUploadFailure(t *testing.T) {
	l := NewLocal(t.TempDir(), "/public/uploads/")
	res, err := l.Upload(context.Background(), "broken.png", strings.NewReader("garbage"))
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Success || res.URL != "" {
		t.Errorf("result = %+v, want failure", res)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Photo 01.JPG", "photo-01"},
		{"../../etc/passwd", "passwd"},
		{"Съёмка.png", "image"},
		{"a__b.png", "a-b"},
	}
	for _, tt := range tests {
		if got := baseName(tt.in); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPublicBase(t *testing.T) {
	got := publicBase(S3Config{Endpoint: "s3.example.com", Bucket: "media", UseSSL: true})
	if got != "https://s3.example.com/media/" {
		t.Errorf("publicBase = %q", got)
	}
	got = publicBase(S3Config{PublicURL: "https://cdn.example.com/"})
	if got != "https://cdn.example.com/" {
		t.Errorf("publicBase = %q", got)
	}
	if key := objectKey("Reel.mov"); !strings.HasPrefix(key, "uploads/reel-") || !strings.HasSuffix(key, ".jpg") {
		t.Errorf("objectKey = %q", key)
	}
}
