package types

// Built-in singleton types. These are process-global and compared by
// identity: every checker instance shares them, so primitives from two
// checked modules are the same type object.
var (
	Number = NewSimpleType("Number")
	Nil    = NewSimpleType("Nil")
	Bool   = NewSimpleType("Bool")
	Atom   = NewSimpleType("Atom")
	String = NewSimpleType("String")
	// Never blocks every assignment target. Identity-first subtyping
	// means Never is not a universal bottom: Never <: T only holds for
	// T == Never or T == Any.
	Never = NewSimpleType("Never")
	Any   = NewSimpleType("Any")
)

// Type definitions for the built-in generic containers and the task
// handle. Each is a singleton SimpleType whose generic parameters are
// shared by its method signatures.
var (
	ListTypeDef = makeListTypeDef()
	MapTypeDef  = makeMapTypeDef()
	TaskTypeDef = makeTaskTypeDef()
)

func makeListTypeDef() *SimpleType {
	t := NewSimpleType("List")
	item := &GenericTypeDefinition{Name: "T"}
	t.Generics = []*GenericTypeDefinition{item}

	t.Methods["init"] = &FunctorType{ReturnType: t}
	t.Methods["append"] = &FunctorType{Arguments: []Type{item}, ReturnType: Nil}
	t.Methods["pop"] = &FunctorType{ReturnType: item}
	t.Methods["length"] = &FunctorType{ReturnType: Number}
	return t
}

func makeMapTypeDef() *SimpleType {
	t := NewSimpleType("Map")
	key := &GenericTypeDefinition{Name: "K"}
	value := &GenericTypeDefinition{Name: "V"}
	t.Generics = []*GenericTypeDefinition{key, value}

	t.Methods["init"] = &FunctorType{ReturnType: t}
	t.Methods["remove"] = &FunctorType{Arguments: []Type{key}, ReturnType: Bool}
	t.Methods["length"] = &FunctorType{ReturnType: Number}
	return t
}

func makeTaskTypeDef() *SimpleType {
	t := NewSimpleType("Task")
	t.Fields["done"] = Bool
	t.Fields["result"] = Any
	return t
}
