package checker

import (
	"testing"

	"github.com/henry232323/saffron-lang/pkg/types"
)

func newTestChecker() *Checker {
	c := NewChecker(nil, nil)
	c.GlobalEnv()
	return c
}

func TestSubtypeReflexivity(t *testing.T) {
	c := newTestChecker()

	functor := &types.FunctorType{
		Arguments:  []types.Type{types.Number},
		ReturnType: types.String,
	}
	union := &types.UnionType{Left: types.Number, Right: types.String}
	generic := &types.GenericType{Target: types.ListTypeDef, Arguments: []types.Type{types.Number}}

	for _, typ := range []types.Type{
		types.Number, types.String, types.Bool, types.Nil, types.Atom,
		types.Never, types.Any, functor, union, generic,
	} {
		if !c.isSubType(typ, typ) {
			t.Errorf("%s <: %s should hold", typ, typ)
		}
	}
}

func TestAnyIsTop(t *testing.T) {
	c := newTestChecker()
	for _, typ := range []types.Type{types.Number, types.String, types.Never, types.ListTypeDef} {
		if !c.isSubType(typ, types.Any) {
			t.Errorf("%s <: Any should hold", typ)
		}
	}
}

func TestNeverBlocksAssignment(t *testing.T) {
	c := newTestChecker()

	// Identity-first: Never <: Never, and Never <: Any like everything.
	if !c.isSubType(types.Never, types.Never) {
		t.Error("Never <: Never should hold")
	}
	if !c.isSubType(types.Never, types.Any) {
		t.Error("Never <: Any should hold")
	}

	// Nothing else accepts Never, and Never accepts nothing else.
	if c.isSubType(types.Number, types.Never) {
		t.Error("Number <: Never should not hold")
	}
	if c.isSubType(types.Never, types.Number) {
		t.Error("Never <: Number should not hold (Never is not a universal bottom)")
	}
}

func TestUnionAbsorption(t *testing.T) {
	c := newTestChecker()
	union := &types.UnionType{Left: types.Number, Right: types.String}

	if !c.isSubType(types.Number, union) {
		t.Error("Number <: Number | String should hold")
	}
	if !c.isSubType(types.String, union) {
		t.Error("String <: Number | String should hold")
	}
	if c.isSubType(types.Bool, union) {
		t.Error("Bool <: Number | String should not hold")
	}
}

func TestSimpleSupertypeChain(t *testing.T) {
	c := newTestChecker()

	animal := types.NewSimpleType("Animal")
	dog := types.NewSimpleType("Dog")
	dog.SuperType = animal
	puppy := types.NewSimpleType("Puppy")
	puppy.SuperType = dog

	if !c.isSubType(puppy, animal) {
		t.Error("Puppy <: Animal should hold transitively")
	}
	if c.isSubType(animal, puppy) {
		t.Error("Animal <: Puppy should not hold")
	}
}

func TestSubtypeFunctorArgsCovariant(t *testing.T) {
	c := newTestChecker()

	animal := types.NewSimpleType("Animal")
	dog := types.NewSimpleType("Dog")
	dog.SuperType = animal

	takesDog := &types.FunctorType{Arguments: []types.Type{dog}, ReturnType: types.Nil}
	takesAnimal := &types.FunctorType{Arguments: []types.Type{animal}, ReturnType: types.Nil}

	// Arguments compare covariantly: a Dog-taking functor is accepted
	// where an Animal-taking one is expected, not the other way around.
	if !c.isSubType(takesDog, takesAnimal) {
		t.Error("(Dog)=>Nil <: (Animal)=>Nil should hold under covariant arguments")
	}
	if c.isSubType(takesAnimal, takesDog) {
		t.Error("(Animal)=>Nil <: (Dog)=>Nil should not hold under covariant arguments")
	}
}

func TestFunctorArityMismatch(t *testing.T) {
	c := newTestChecker()
	one := &types.FunctorType{Arguments: []types.Type{types.Number}, ReturnType: types.Nil}
	two := &types.FunctorType{Arguments: []types.Type{types.Number, types.Number}, ReturnType: types.Nil}
	if c.isSubType(one, two) || c.isSubType(two, one) {
		t.Error("functors of different arity should not be subtypes")
	}
}

func TestStructuralInterface(t *testing.T) {
	c := newTestChecker()

	hasName := types.NewInterfaceType("HasName")
	hasName.Fields["name"] = types.String

	person := types.NewSimpleType("Person")
	person.Fields["name"] = types.String
	person.Fields["age"] = types.Number

	nameless := types.NewSimpleType("Nameless")
	nameless.Fields["age"] = types.Number

	if !c.isSubType(person, hasName) {
		t.Error("Person <: HasName should hold structurally")
	}
	if c.isSubType(nameless, hasName) {
		t.Error("Nameless <: HasName should not hold")
	}
	if c.isSubType(types.Number, hasName) {
		t.Error("a primitive without the field should not satisfy the interface")
	}
}

func TestInterfaceMethodCheck(t *testing.T) {
	c := newTestChecker()

	speaker := types.NewInterfaceType("Speaker")
	speaker.Methods["speak"] = &types.FunctorType{ReturnType: types.String}

	dog := types.NewSimpleType("Dog")
	dog.Methods["speak"] = &types.FunctorType{ReturnType: types.String}

	cat := types.NewSimpleType("Cat")
	cat.Methods["speak"] = &types.FunctorType{ReturnType: types.Number}

	if !c.isSubType(dog, speaker) {
		t.Error("Dog <: Speaker should hold")
	}
	if c.isSubType(cat, speaker) {
		t.Error("Cat <: Speaker should not hold (wrong method return)")
	}
}

func TestGenericDefinitionBinding(t *testing.T) {
	c := newTestChecker()

	def := &types.GenericTypeDefinition{Name: "T"}
	c.env.registerGeneric(def)

	// First check binds T to Number.
	if !c.isSubType(types.Number, def) {
		t.Fatal("binding an unresolved generic should succeed")
	}
	// Consistent use succeeds, conflicting use fails.
	if !c.isSubType(types.Number, def) {
		t.Error("re-checking against the bound type should succeed")
	}
	if c.isSubType(types.String, def) {
		t.Error("a conflicting binding should fail")
	}
}

func TestGenericBoundRespected(t *testing.T) {
	c := newTestChecker()

	def := &types.GenericTypeDefinition{Name: "T", Extends: types.Number}
	c.env.registerGeneric(def)

	if c.isSubType(types.String, def) {
		t.Error("String should not satisfy T extends Number")
	}
	if !c.isSubType(types.Number, def) {
		t.Error("Number should satisfy T extends Number")
	}
}

func TestGenericContainerSubtype(t *testing.T) {
	c := newTestChecker()

	numbers := &types.GenericType{Target: types.ListTypeDef, Arguments: []types.Type{types.Number}}
	strns := &types.GenericType{Target: types.ListTypeDef, Arguments: []types.Type{types.String}}
	alsoNumbers := &types.GenericType{Target: types.ListTypeDef, Arguments: []types.Type{types.Number}}

	if !c.isSubType(numbers, alsoNumbers) {
		t.Error("List<Number> <: List<Number> should hold")
	}
	if c.isSubType(numbers, strns) {
		t.Error("List<Number> <: List<String> should not hold")
	}
	// The applied generic is a subtype of its bare target.
	if !c.isSubType(numbers, types.ListTypeDef) {
		t.Error("List<Number> <: List should hold")
	}
}
