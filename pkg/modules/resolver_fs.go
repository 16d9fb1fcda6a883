package modules

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/henry232323/saffron-lang/pkg/source"
)

// FileSystemResolver resolves import paths against a filesystem root.
// Paths are cleaned but not otherwise canonicalized; what the program
// imports is what gets read.
type FileSystemResolver struct {
	fsys    fs.FS
	baseDir string
}

// NewFileSystemResolver creates a resolver rooted at baseDir of fsys.
func NewFileSystemResolver(fsys fs.FS, baseDir string) *FileSystemResolver {
	return &FileSystemResolver{fsys: fsys, baseDir: baseDir}
}

// Resolve reads the module source at the given import path.
func (r *FileSystemResolver) Resolve(importPath string) (*source.SourceFile, error) {
	cleaned := path.Clean(strings.TrimPrefix(importPath, "./"))
	data, err := fs.ReadFile(r.fsys, cleaned)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", importPath, err)
	}
	return source.NewSourceFile(path.Base(cleaned), path.Join(r.baseDir, cleaned), string(data)), nil
}
