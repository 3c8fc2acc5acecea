package admin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PreviewStore hands out temporary URLs for a selected image. Every URL it
// creates must be revoked exactly once.
type PreviewStore interface {
	Create(f ImageFile) (string, error)
	Revoke(url string)
}

const blobScheme = "blob:"

// MemoryPreviews keeps previews in memory under blob: URLs.
type MemoryPreviews struct {
	mu   sync.Mutex
	live map[string]ImageFile
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{live: map[string]ImageFile{}}
}

func (p *MemoryPreviews) Create(f ImageFile) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	url := blobScheme + id.String()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.live[url] = f
	return url, nil
}

func (p *MemoryPreviews) Revoke(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.live, url)
}

func (p *MemoryPreviews) Lookup(url string) (ImageFile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.live[url]
	return f, ok
}

// Live reports how many previews have not been revoked yet.
func (p *MemoryPreviews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// TempFilePreviews writes each preview to a temp file so a terminal can hand
// it to an image viewer. Revoke removes the file.
type TempFilePreviews struct {
	// Dir defaults to os.TempDir().
	Dir string
}

func (p TempFilePreviews) Create(f ImageFile) (string, error) {
	tmp, err := os.CreateTemp(p.Dir, "estatedesk-preview-*"+strings.ToLower(filepath.Ext(f.Name)))
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer tmp.Close()

	if _, err := tmp.Write(f.Data); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write preview: %w", err)
	}
	return "file://" + tmp.Name(), nil
}

func (p TempFilePreviews) Revoke(url string) {
	path, ok := strings.CutPrefix(url, "file://")
	if !ok {
		return
	}
	os.Remove(path)
}
