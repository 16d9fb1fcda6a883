package types

import (
	"strings"
)

// Type is the interface implemented by all semantic type representations.
// Types are distinct from type annotation nodes in the AST: the checker
// evaluates annotation nodes into values of this interface.
type Type interface {
	// String returns a representation of the type for diagnostics.
	String() string

	// typeNode is a marker method so the set of types stays closed to
	// this package.
	typeNode()
}

// GenericTypeDefinition is an as-yet-unresolved generic parameter, with an
// optional `extends` upper bound. Resolution is identity-keyed: two
// parameters with the same name from different declarations are distinct.
type GenericTypeDefinition struct {
	Name    string
	Extends Type
}

func (g *GenericTypeDefinition) String() string { return g.Name }
func (g *GenericTypeDefinition) typeNode()      {}

// SimpleType is a nominal type: methods, fields, declared generic
// parameters, and an optional supertype.
type SimpleType struct {
	Name      string
	Methods   map[string]Type
	Fields    map[string]Type
	Generics  []*GenericTypeDefinition
	SuperType Type
}

// NewSimpleType creates a simple type with empty method and field tables
// and no supertype.
func NewSimpleType(name string) *SimpleType {
	return &SimpleType{
		Name:    name,
		Methods: make(map[string]Type),
		Fields:  make(map[string]Type),
	}
}

func (s *SimpleType) String() string { return s.Name }
func (s *SimpleType) typeNode()      {}

// FunctorType is the semantic type of a function or lambda. Unannotated
// parameters are Any; a nil entry in Arguments is a parameter whose
// annotation failed to resolve.
type FunctorType struct {
	Arguments  []Type
	ReturnType Type
	Generics   []*GenericTypeDefinition
}

func (f *FunctorType) String() string {
	var sb strings.Builder
	if len(f.Generics) > 0 {
		sb.WriteString("<")
		for i, g := range f.Generics {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.Name)
		}
		sb.WriteString(">")
	}
	sb.WriteString("(")
	for i, arg := range f.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		if arg != nil {
			sb.WriteString(arg.String())
		} else {
			sb.WriteString("Any")
		}
	}
	sb.WriteString(") => ")
	if f.ReturnType != nil {
		sb.WriteString(f.ReturnType.String())
	} else {
		sb.WriteString("Nil")
	}
	return sb.String()
}
func (f *FunctorType) typeNode() {}

// UnionType is a sum of two types.
type UnionType struct {
	Left  Type
	Right Type
}

func (u *UnionType) String() string {
	return u.Left.String() + " | " + u.Right.String()
}
func (u *UnionType) typeNode() {}

// InterfaceType is a structural type defined by required methods and
// fields. Its supertype, if any, must itself be an interface.
type InterfaceType struct {
	Name      string
	Methods   map[string]Type
	Fields    map[string]Type
	Generics  []*GenericTypeDefinition
	SuperType Type
}

// NewInterfaceType creates an interface type with empty member tables.
func NewInterfaceType(name string) *InterfaceType {
	return &InterfaceType{
		Name:    name,
		Methods: make(map[string]Type),
		Fields:  make(map[string]Type),
	}
}

func (i *InterfaceType) String() string { return i.Name }
func (i *InterfaceType) typeNode()      {}

// GenericType is a generic target (simple type or interface) applied to
// concrete arguments, e.g. List<Number>.
type GenericType struct {
	Target    Type
	Arguments []Type
}

func (g *GenericType) String() string {
	var sb strings.Builder
	sb.WriteString(g.Target.String())
	sb.WriteString("<")
	for i, arg := range g.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(">")
	return sb.String()
}
func (g *GenericType) typeNode() {}
