package errors

import "github.com/henry232323/saffron-lang/pkg/source"

// Position represents a specific location in the source code.
// Line and column are 1-based for human-readable output; the byte offsets
// are 0-based for tooling.
type Position struct {
	Line     int                // 1-based line number
	Column   int                // 1-based column number
	StartPos int                // 0-based byte offset of the start of the span
	EndPos   int                // 0-based byte offset after the span
	Source   *source.SourceFile // Originating source file, if known
}
