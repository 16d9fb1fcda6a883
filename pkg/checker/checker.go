package checker

import (
	"github.com/henry232323/saffron-lang/pkg/errors"
	"github.com/henry232323/saffron-lang/pkg/lexer"
	"github.com/henry232323/saffron-lang/pkg/modules"
	"github.com/henry232323/saffron-lang/pkg/parser"
	"github.com/henry232323/saffron-lang/pkg/source"
	"github.com/henry232323/saffron-lang/pkg/types"
	"github.com/henry232323/saffron-lang/pkg/vm"
)

// Checker walks an AST in a single pre-order pass, assigning a type to
// every expression and validating subtyping at assignment, call, return,
// element, and field-access sites. All the state the original kept in
// globals lives here, so checkers are independent of each other.
type Checker struct {
	env *Environment

	registry *modules.Registry
	resolver modules.Resolver

	currentClassType      types.Type
	currentFuncType       *types.FunctorType
	currentAssignmentType types.Type

	src       *source.SourceFile
	errs      []errors.SaffronError
	panicMode bool
	hadError  bool
}

// NewChecker creates a checker backed by the given module registry and
// resolver. The resolver may be nil, in which case imports fail with a
// diagnostic.
func NewChecker(registry *modules.Registry, resolver modules.Resolver) *Checker {
	if registry == nil {
		registry = modules.NewRegistry()
	}
	return &Checker{
		registry: registry,
		resolver: resolver,
	}
}

// GlobalEnv exposes the root environment, creating it on first use. The
// REPL uses this to keep definitions across inputs.
func (c *Checker) GlobalEnv() *Environment {
	if c.env == nil {
		c.env = newGlobalEnvironment()
	}
	return c.env
}

// newGlobalEnvironment builds the root scope with the built-in primitives
// and the List/Map constructors.
func newGlobalEnvironment() *Environment {
	env := NewEnvironment(nil, parser.FunctionKindScript)

	env.DefineTypeDef("Number", types.Number)
	env.DefineTypeDef("Nil", types.Nil)
	env.DefineTypeDef("Bool", types.Bool)
	env.DefineTypeDef("Atom", types.Atom)
	env.DefineTypeDef("String", types.String)
	env.DefineTypeDef("Never", types.Never)
	env.DefineTypeDef("Any", types.Any)
	env.DefineTypeDef("Task", types.TaskTypeDef)

	defineLocalAndTypeDef(env, "List", types.ListTypeDef)
	defineLocalAndTypeDef(env, "Map", types.MapTypeDef)

	return env
}

// defineLocalAndTypeDef installs a container type definition and its
// callable constructor (the type's init method) under the same name.
func defineLocalAndTypeDef(env *Environment, name string, t *types.SimpleType) {
	env.DefineTypeDef(name, t)
	env.DefineLocal(name, t.Methods["init"])
}

// Check type-checks a whole program against src. Diagnostics accumulate
// and are returned; the checker never aborts mid-program.
func (c *Checker) Check(src *source.SourceFile, program *parser.Program) []errors.SaffronError {
	c.src = src
	c.errs = nil
	c.hadError = false
	c.panicMode = false

	c.GlobalEnv()

	if program != nil {
		c.checkStatements(program.Statements)
	}

	return c.errs
}

// HadError reports whether any type error occurred during the last Check.
func (c *Checker) HadError() bool { return c.hadError }

func (c *Checker) checkStatements(stmts []parser.Statement) {
	for _, stmt := range stmts {
		// Statement boundaries end panic-mode suppression.
		c.panicMode = false
		c.checkStatement(stmt)
	}
}

// checkBlock evaluates a statement list and yields the last statement's
// type, which is what if-expressions and the REPL observe.
func (c *Checker) checkBlock(stmts []parser.Statement) types.Type {
	var last types.Type
	for _, stmt := range stmts {
		c.panicMode = false
		last = c.checkStatement(stmt)
	}
	return last
}

// --- Environment stack ---

func (c *Checker) pushEnv(kind parser.FunctionKind) {
	c.env = NewEnvironment(c.env, kind)
}

func (c *Checker) popEnv() {
	c.env = c.env.enclosing
}

// --- Diagnostics ---

func (c *Checker) errorAt(tok lexer.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := "at '" + tok.Literal + "'"
	if tok.Type == lexer.EOF {
		where = "at end"
	}

	c.errs = append(c.errs, &errors.TypeError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   c.src,
		},
		Msg: where + ": " + message,
	})
}

// errorBare reports a diagnostic with no useful source location, for
// failures detected deep inside subtype checks.
func (c *Checker) errorBare(message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errs = append(c.errs, &errors.TypeError{
		Position: errors.Position{Source: c.src},
		Msg:      message,
	})
}

// --- Name resolution ---

// getVariableType resolves an identifier: scope chain first, then the
// builtin module registry.
func (c *Checker) getVariableType(name lexer.Token) types.Type {
	if t, ok := c.env.ResolveLocal(name.Literal); ok {
		return t
	}
	if t, ok := c.registry.LookupBuiltin(name.Literal); ok {
		return t
	}
	c.errorAt(name, "Undefined variable")
	return nil
}

func (c *Checker) getTypeDef(name lexer.Token) types.Type {
	if t, ok := c.env.ResolveTypeDef(name.Literal); ok {
		return t
	}
	c.errorAt(name, "Undefined type")
	return nil
}

// getTypeOf classifies a runtime constant into a primitive type.
func getTypeOf(value vm.Value) types.Type {
	switch value.Type() {
	case vm.TypeBool:
		return types.Bool
	case vm.TypeNil:
		return types.Nil
	case vm.TypeNumber:
		return types.Number
	case vm.TypeString:
		return types.String
	case vm.TypeAtom:
		return types.Atom
	}
	return nil
}

// --- Modules ---

// CheckModule resolves, parses, and checks the module at path, returning
// its type. Results are cached by path: repeated imports yield the same
// type object identity. The current environment and checking context are
// snapshotted and restored around the nested check.
func (c *Checker) CheckModule(path lexer.Token) types.Type {
	pathStr := path.Literal
	if cached, ok := c.registry.Lookup(pathStr); ok {
		return cached
	}

	if c.resolver == nil {
		c.errorAt(path, "No module resolver configured")
		return nil
	}

	src, err := c.resolver.Resolve(pathStr)
	if err != nil {
		c.errorAt(path, "Could not read module \""+pathStr+"\"")
		return nil
	}

	// Snapshot the checking context; the module checks in a fresh root.
	oldEnv := c.env
	oldSrc := c.src
	oldClass := c.currentClassType
	oldFunc := c.currentFuncType
	oldAssignment := c.currentAssignmentType
	oldPanic := c.panicMode

	c.env = newGlobalEnvironment()
	c.src = src
	c.currentClassType = nil
	c.currentFuncType = nil
	c.currentAssignmentType = nil
	c.panicMode = false

	p := parser.NewParser(src)
	program, parseErrs := p.ParseProgram()
	c.errs = append(c.errs, parseErrs...)
	if p.HadError() {
		c.hadError = true
	}

	var moduleType *types.SimpleType
	if program != nil {
		c.checkStatements(program.Statements)

		moduleType = types.NewSimpleType(pathStr)
		for name, t := range c.env.locals {
			moduleType.Fields[name] = t
		}
		c.registry.Register(pathStr, moduleType)
	}

	c.env = oldEnv
	c.src = oldSrc
	c.currentClassType = oldClass
	c.currentFuncType = oldFunc
	c.currentAssignmentType = oldAssignment
	c.panicMode = oldPanic

	if moduleType == nil {
		return nil
	}
	return moduleType
}
