package checker

import (
	"github.com/henry232323/saffron-lang/pkg/types"
)

// isSubType reports whether sub can be assigned where super is expected.
// Rules apply in order; the first match wins. Generic parameter resolution
// is a side effect: checking against an unresolved parameter binds it in
// the environment chain.
func (c *Checker) isSubType(sub, super types.Type) bool {
	// A nil on either side means that subtree already failed to check;
	// don't cascade a second diagnostic off it.
	if sub == nil || super == nil {
		return true
	}

	if sub == super {
		return true
	}

	if super == types.Never {
		return false
	}

	if super == types.Any {
		return true
	}

	switch s := sub.(type) {
	case *types.GenericType:
		if c.isSubType(s.Target, super) {
			return true
		}
	case *types.GenericTypeDefinition:
		if inner := c.env.findGenericResolution(s); inner != nil {
			return c.isSubType(inner, super)
		}
	}

	switch s := super.(type) {
	case *types.SimpleType:
		subSimple, ok := sub.(*types.SimpleType)
		if !ok {
			return false
		}
		if subSimple.SuperType == nil {
			return false
		}
		return c.isSubType(subSimple.SuperType, super)

	case *types.FunctorType:
		subFunctor, ok := sub.(*types.FunctorType)
		if !ok {
			return false
		}
		if len(s.Arguments) != len(subFunctor.Arguments) {
			return false
		}
		// Arguments compare covariantly, preserving the original
		// checker's observable behavior (see DESIGN.md).
		for i := range s.Arguments {
			if !c.isSubType(subFunctor.Arguments[i], s.Arguments[i]) {
				return false
			}
		}
		return c.isSubType(subFunctor.ReturnType, s.ReturnType)

	case *types.GenericType:
		if target, ok := s.Target.(*types.InterfaceType); ok {
			if len(s.Arguments) != len(target.Generics) {
				c.errorBare("Type argument count mismatch in generic")
				return false
			}
			for i, def := range target.Generics {
				c.env.bindGeneric(def, s.Arguments[i])
			}
			return c.isSubType(sub, s.Target)
		}

		subGeneric, ok := sub.(*types.GenericType)
		if !ok {
			return false
		}
		if len(subGeneric.Arguments) != len(s.Arguments) {
			return false
		}
		for i := range s.Arguments {
			if !c.isSubType(subGeneric.Arguments[i], s.Arguments[i]) {
				return false
			}
		}
		return c.isSubType(subGeneric.Target, s.Target)

	case *types.GenericTypeDefinition:
		if s.Extends == nil || c.isSubType(sub, s.Extends) {
			return c.resolveGenericArgument(sub, s)
		}
		return false

	case *types.UnionType:
		return c.isSubType(sub, s.Left) || c.isSubType(sub, s.Right)

	case *types.InterfaceType:
		subMethods, subFields, ok := memberTables(sub)
		if !ok {
			return false
		}
		for name, fieldType := range s.Fields {
			targetField, exists := subFields[name]
			if !exists {
				return false
			}
			if !c.isSubType(targetField, fieldType) {
				return false
			}
		}
		for name, methodType := range s.Methods {
			targetMethod, exists := subMethods[name]
			if !exists {
				return false
			}
			if !c.isSubType(targetMethod, methodType) {
				return false
			}
		}
		return true
	}

	return false
}

// memberTables gives uniform access to the method and field tables of
// nominal and structural types.
func memberTables(t types.Type) (methods, fields map[string]types.Type, ok bool) {
	switch tt := t.(type) {
	case *types.SimpleType:
		return tt.Methods, tt.Fields, true
	case *types.InterfaceType:
		return tt.Methods, tt.Fields, true
	}
	return nil, nil, false
}

// resolveGenericArgument searches the environment chain for def's
// resolution entry. An unresolved entry binds to sub and succeeds; a
// resolved one succeeds iff sub is a subtype of the bound type.
func (c *Checker) resolveGenericArgument(sub types.Type, def *types.GenericTypeDefinition) bool {
	for env := c.env; env != nil; env = env.enclosing {
		bound, registered := env.genericResolutions[def]
		if !registered {
			continue
		}
		if bound == nil {
			env.bindGeneric(def, sub)
			return true
		}
		return c.isSubType(sub, bound)
	}
	return false
}

// substituteGenerics replaces resolved generic parameters in t with their
// bindings from the environment chain. Call sites use this to concretize a
// callee's return type before the argument environment pops.
func (c *Checker) substituteGenerics(t types.Type) types.Type {
	switch tt := t.(type) {
	case *types.GenericTypeDefinition:
		if resolved := c.env.findGenericResolution(tt); resolved != nil {
			return resolved
		}
		return tt
	case *types.GenericType:
		args := make([]types.Type, len(tt.Arguments))
		changed := false
		for i, arg := range tt.Arguments {
			args[i] = c.substituteGenerics(arg)
			if args[i] != arg {
				changed = true
			}
		}
		if !changed {
			return tt
		}
		return &types.GenericType{Target: tt.Target, Arguments: args}
	case *types.UnionType:
		left := c.substituteGenerics(tt.Left)
		right := c.substituteGenerics(tt.Right)
		if left == tt.Left && right == tt.Right {
			return tt
		}
		return &types.UnionType{Left: left, Right: right}
	}
	return t
}
