package modules

import (
	"github.com/henry232323/saffron-lang/pkg/source"
)

// Resolver locates module source by import path. Implementations exist for
// the filesystem and for in-memory module sets used in tests.
type Resolver interface {
	// Resolve returns the source file for the given import path, or an
	// error when the module cannot be located or read.
	Resolve(path string) (*source.SourceFile, error)
}
