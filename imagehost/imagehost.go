// Package imagehost stores uploaded images and returns their public URLs.
// Every image is downscaled to MaxWidth and re-encoded as JPEG before it is
// stored.
package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// MaxWidth is the widest image kept; wider uploads are scaled down.
	MaxWidth = 1600
	// MaxUploadSize bounds the accepted upload body.
	MaxUploadSize = 10 << 20

	jpegQuality = 82
)

// Result reports the outcome of an upload. URL is set only on success.
type Result struct {
	Success bool
	URL     string
}

// Host is an image hosting backend.
type Host interface {
	Upload(ctx context.Context, filename string, r io.Reader) (Result, error)
}

// Process decodes src, resizes it to at most maxWidth pixels wide and encodes
// it as JPEG.
func Process(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(io.LimitReader(src, MaxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// baseName turns an uploaded file name into a URL-safe stem.
func baseName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	prev := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "image"
	}
	return s
}
