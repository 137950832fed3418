package image

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrModuleNotFound reports that a provider has no image for a requested
// module. Unlike a stale signature, this is fatal for an aggregation run.
var ErrModuleNotFound = errors.New("module not found")

// Provider supplies module images by name. Obtaining an image is the only
// blocking operation in a dump; everything downstream is pure computation.
type Provider interface {
	GetImage(module string) (*View, error)
}

// FileProvider serves module images from PE files in a directory, e.g. a
// copied-out game install. File contents are remapped to virtual layout.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// GetImage loads dir/module and maps it to its virtual layout.
func (p *FileProvider) GetImage(module string) (*View, error) {
	path := filepath.Join(p.dir, module)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", module, ErrModuleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewFileView(module, raw)
}
