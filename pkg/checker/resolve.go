package checker

import (
	"github.com/henry232323/saffron-lang/pkg/parser"
	"github.com/henry232323/saffron-lang/pkg/types"
)

// resolveTypeNode evaluates a type annotation into a semantic type.
// Returns nil when the annotation fails to resolve; a diagnostic has been
// reported by then.
func (c *Checker) resolveTypeNode(node parser.TypeNode) types.Type {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *parser.SimpleTypeNode:
		t := c.getTypeDef(n.Name)
		if t == nil {
			return nil
		}
		if len(n.Generics) == 0 {
			return t
		}

		if declared := declaredGenericCount(t); declared >= 0 && declared != len(n.Generics) {
			c.errorAt(n.Name, "Type argument count mismatch in generic")
		}

		args := make([]types.Type, len(n.Generics))
		for i, g := range n.Generics {
			args[i] = c.resolveTypeNode(g)
		}
		return &types.GenericType{Target: t, Arguments: args}

	case *parser.FunctorTypeNode:
		c.pushEnv(parser.FunctionKindFunction)
		functor := &types.FunctorType{
			Generics: c.processGenericParams(n.Generics),
		}
		for _, arg := range n.Arguments {
			if arg != nil {
				functor.Arguments = append(functor.Arguments, c.resolveTypeNode(arg))
			} else {
				functor.Arguments = append(functor.Arguments, nil)
			}
		}
		functor.ReturnType = c.resolveTypeNode(n.ReturnType)
		c.popEnv()
		return functor

	case *parser.UnionTypeNode:
		return &types.UnionType{
			Left:  c.resolveTypeNode(n.Left),
			Right: c.resolveTypeNode(n.Right),
		}
	}

	return nil
}

// declaredGenericCount returns the declared generic arity of a target, or
// -1 for types that take no generic application at all.
func declaredGenericCount(t types.Type) int {
	switch tt := t.(type) {
	case *types.SimpleType:
		return len(tt.Generics)
	case *types.InterfaceType:
		return len(tt.Generics)
	}
	return -1
}

// processGenericParams turns generic parameter declarations into
// definitions, evaluating their `extends` bounds and installing each under
// its name in the current environment.
func (c *Checker) processGenericParams(decls []*parser.TypeDeclaration) []*types.GenericTypeDefinition {
	if len(decls) == 0 {
		return nil
	}
	defs := make([]*types.GenericTypeDefinition, 0, len(decls))
	for _, decl := range decls {
		def := &types.GenericTypeDefinition{Name: decl.Name.Literal}
		if decl.Target != nil {
			def.Extends = c.resolveTypeNode(decl.Target)
		}
		c.env.DefineTypeDef(decl.Name.Literal, def)
		defs = append(defs, def)
	}
	return defs
}
