package source

import (
	"path/filepath"
	"strings"
)

// SourceFile represents a unit of saffron source with its metadata.
type SourceFile struct {
	Name    string   // Display name (e.g. "main.saf", "<repl>")
	Path    string   // Full file path (empty for REPL/eval input)
	Content string   // The source text
	lines   []string // Cached split lines (lazy)
}

// NewSourceFile creates a source file with an explicit display name.
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewReplSource creates a source file for REPL input.
func NewReplSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<repl>",
		Content: content,
	}
}

// FromFile creates a SourceFile from a file path and its content.
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Lines returns the source split into lines (cached).
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// DisplayPath returns the best path for display, preferring Path.
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile reports whether this source came from an actual file.
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}
