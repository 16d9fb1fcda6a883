package modules

import (
	"fmt"

	"github.com/henry232323/saffron-lang/pkg/source"
)

// MemoryResolver serves modules from an in-memory map. Tests use it to
// exercise imports without touching the filesystem.
type MemoryResolver struct {
	files map[string]string
}

// NewMemoryResolver creates a resolver over the given path → source map.
func NewMemoryResolver(files map[string]string) *MemoryResolver {
	if files == nil {
		files = make(map[string]string)
	}
	return &MemoryResolver{files: files}
}

// Add registers module source under path.
func (r *MemoryResolver) Add(path, content string) {
	r.files[path] = content
}

// Resolve returns the registered source for path.
func (r *MemoryResolver) Resolve(path string) (*source.SourceFile, error) {
	content, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("module %q: not found", path)
	}
	return source.NewSourceFile(path, path, content), nil
}
