package imagehost

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Local writes images into a directory served as static files.
type Local struct {
	dir       string
	urlPrefix string
	maxWidth  int

	mu sync.Mutex
}

// NewLocal stores files in dir and reports URLs under urlPrefix, for example
// "/public/uploads/".
func NewLocal(dir, urlPrefix string) *Local {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Local{dir: dir, urlPrefix: urlPrefix, maxWidth: MaxWidth}
}

// Upload processes r and writes it under a name derived from filename.
func (l *Local) Upload(ctx context.Context, filename string, r io.Reader) (Result, error) {
	data, err := Process(r, l.maxWidth)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create uploads dir: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	name := l.uniqueName(baseName(filename))
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write image: %w", err)
	}
	return Result{Success: true, URL: l.urlPrefix + name}, nil
}

// uniqueName appends a counter until the name is free in the directory.
func (l *Local) uniqueName(base string) string {
	candidate := base + ".jpg"
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(l.dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}
