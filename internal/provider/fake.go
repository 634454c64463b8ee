package provider

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/folioscan/folioscan/internal/types"
)

// FakeProvider implements the Provider interface for testing
type FakeProvider struct {
	files   map[string][]types.File
	content map[string]string
}

// NewFakeProvider creates a new fake provider
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		files:   make(map[string][]types.File),
		content: make(map[string]string),
	}
}

// AddFile adds a file to the fake provider, creating parent directories
func (p *FakeProvider) AddFile(path, content string) {
	dir := filepath.Dir(path)
	p.ensureDir(dir)

	p.files[dir] = append(p.files[dir], types.File{
		Name: filepath.Base(path),
		Path: path,
		Type: "file",
		Size: int64(len(content)),
	})

	p.content[path] = content
}

// AddDir adds a directory (and its ancestors) to the fake provider
func (p *FakeProvider) AddDir(path string) {
	p.ensureDir(path)
}

func (p *FakeProvider) ensureDir(path string) {
	if path == "" || path == "/" {
		path = "."
	}
	if _, exists := p.files[path]; exists {
		return
	}
	p.files[path] = make([]types.File, 0)

	if path == "." {
		return
	}

	parent := filepath.Dir(path)
	p.ensureDir(parent)
	p.files[parent] = append(p.files[parent], types.File{
		Name: filepath.Base(path),
		Path: path,
		Type: "dir",
	})
}

// ListDir returns the contents of a directory
func (p *FakeProvider) ListDir(path string) ([]types.File, error) {
	if path == "" || path == "/" {
		path = "."
	}
	files, exists := p.files[path]
	if !exists {
		return nil, os.ErrNotExist
	}
	sorted := make([]types.File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted, nil
}

// ReadFile reads file content as bytes
func (p *FakeProvider) ReadFile(path string) ([]byte, error) {
	content, exists := p.content[path]
	if !exists {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

// Exists checks if a file or directory exists
func (p *FakeProvider) Exists(path string) (bool, error) {
	_, fileExists := p.content[path]
	_, dirExists := p.files[path]
	return fileExists || dirExists, nil
}

// IsDir checks if a path is a directory
func (p *FakeProvider) IsDir(path string) (bool, error) {
	_, exists := p.files[path]
	return exists, nil
}

// GetBasePath returns the base path for this provider
func (p *FakeProvider) GetBasePath() string {
	return "."
}
