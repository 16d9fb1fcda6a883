package driver

import (
	"os"

	"github.com/henry232323/saffron-lang/pkg/checker"
	"github.com/henry232323/saffron-lang/pkg/errors"
	"github.com/henry232323/saffron-lang/pkg/modules"
	"github.com/henry232323/saffron-lang/pkg/parser"
	"github.com/henry232323/saffron-lang/pkg/source"
	"github.com/henry232323/saffron-lang/pkg/types"
)

// Saffron is a persistent front-end session: one module registry, one
// resolver, and one checker whose root environment survives across
// evaluations so REPL definitions carry over.
type Saffron struct {
	registry *modules.Registry
	resolver modules.Resolver
	checker  *checker.Checker
}

// New creates a session resolving modules from the current directory.
func New() *Saffron {
	return NewWithBaseDir(".")
}

// NewWithBaseDir creates a session resolving modules from baseDir.
func NewWithBaseDir(baseDir string) *Saffron {
	return NewWithResolver(modules.NewFileSystemResolver(os.DirFS(baseDir), baseDir))
}

// NewWithResolver creates a session with a custom module resolver.
func NewWithResolver(resolver modules.Resolver) *Saffron {
	registry := modules.NewRegistry()
	RegisterBuiltinModules(registry)
	return &Saffron{
		registry: registry,
		resolver: resolver,
		checker:  checker.NewChecker(registry, resolver),
	}
}

// Registry exposes the session's module registry.
func (s *Saffron) Registry() *modules.Registry { return s.registry }

// ParseSource parses src without checking it.
func (s *Saffron) ParseSource(src *source.SourceFile) (*parser.Program, []errors.SaffronError) {
	return parser.NewParser(src).ParseProgram()
}

// CheckSource parses and type-checks src. The returned program is nil when
// a syntax error suppressed the parse; diagnostics cover both phases.
func (s *Saffron) CheckSource(src *source.SourceFile) (*parser.Program, []errors.SaffronError) {
	program, parseErrs := s.ParseSource(src)
	if program == nil {
		return nil, parseErrs
	}

	typeErrs := s.checker.Check(src, program)
	return program, append(parseErrs, typeErrs...)
}

// CheckFile reads, parses, and checks the file at path.
func (s *Saffron) CheckFile(path string) (*parser.Program, []errors.SaffronError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	src := source.FromFile(path, string(data))
	program, errs := s.CheckSource(src)
	return program, errs, nil
}

// CheckRepl checks one REPL input in the session environment and returns
// the type of its last statement, when it has one.
func (s *Saffron) CheckRepl(input string) (types.Type, []errors.SaffronError) {
	src := source.NewReplSource(input)
	program, errs := s.CheckSource(src)
	if program == nil || len(program.Statements) == 0 {
		return nil, errs
	}

	last := program.Statements[len(program.Statements)-1]
	if es, ok := last.(*parser.ExpressionStatement); ok && es.Expression != nil {
		return es.Expression.GetComputedType(), errs
	}
	return nil, errs
}
