package checker

import (
	"github.com/henry232323/saffron-lang/pkg/parser"
	"github.com/henry232323/saffron-lang/pkg/types"
)

// Environment is a lexical scope: local bindings, type definitions, and
// the identity-keyed table of generic resolutions, linked to its enclosing
// scope. Lookups walk outward until found or exhausted.
type Environment struct {
	locals   map[string]types.Type
	typeDefs map[string]types.Type

	// genericResolutions maps a generic parameter's identity to its
	// resolved type. A key present with a nil value is registered but
	// unresolved; the first successful subtype check against it binds it.
	genericResolutions map[*types.GenericTypeDefinition]types.Type

	scopeDepth int
	kind       parser.FunctionKind
	enclosing  *Environment
}

// NewEnvironment creates an environment nested in enclosing (which may be
// nil for the root scope).
func NewEnvironment(enclosing *Environment, kind parser.FunctionKind) *Environment {
	depth := 0
	if enclosing != nil {
		depth = enclosing.scopeDepth + 1
	}
	return &Environment{
		locals:             make(map[string]types.Type),
		typeDefs:           make(map[string]types.Type),
		genericResolutions: make(map[*types.GenericTypeDefinition]types.Type),
		scopeDepth:         depth,
		kind:               kind,
		enclosing:          enclosing,
	}
}

// DefineLocal binds a value name to its type in this scope.
func (e *Environment) DefineLocal(name string, t types.Type) {
	e.locals[name] = t
}

// DefineTypeDef binds a type name to a type definition in this scope.
func (e *Environment) DefineTypeDef(name string, t types.Type) {
	e.typeDefs[name] = t
}

// ResolveLocal looks a value name up through the scope chain. The boolean
// reports whether the name was found at all; the type may legitimately be
// nil for names bound after an earlier error.
func (e *Environment) ResolveLocal(name string) (types.Type, bool) {
	if t, ok := e.locals[name]; ok {
		return t, true
	}
	if e.enclosing != nil {
		return e.enclosing.ResolveLocal(name)
	}
	return nil, false
}

// ResolveTypeDef looks a type name up through the scope chain.
func (e *Environment) ResolveTypeDef(name string) (types.Type, bool) {
	if t, ok := e.typeDefs[name]; ok {
		return t, true
	}
	if e.enclosing != nil {
		return e.enclosing.ResolveTypeDef(name)
	}
	return nil, false
}

// registerGeneric adds an unresolved entry for a generic parameter in this
// scope. Call sites seed one entry per callee generic before checking
// arguments.
func (e *Environment) registerGeneric(def *types.GenericTypeDefinition) {
	e.genericResolutions[def] = nil
}

// bindGeneric records a resolution for def in this scope, overwriting any
// previous binding at this level.
func (e *Environment) bindGeneric(def *types.GenericTypeDefinition, t types.Type) {
	e.genericResolutions[def] = t
}

// findGenericResolution walks the scope chain for a non-nil resolution of
// def.
func (e *Environment) findGenericResolution(def *types.GenericTypeDefinition) types.Type {
	if t, ok := e.genericResolutions[def]; ok && t != nil {
		return t
	}
	if e.enclosing != nil {
		return e.enclosing.findGenericResolution(def)
	}
	return nil
}
