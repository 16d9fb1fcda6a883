package vm

import "testing"

func TestValueTagging(t *testing.T) {
	tests := []struct {
		value    Value
		expected ValueType
	}{
		{Nil, TypeNil},
		{Bool(true), TypeBool},
		{Number(42), TypeNumber},
		{String("hi"), TypeString},
		{Atom("ok"), TypeAtom},
		{NewList(Number(1)), TypeList},
		{NewClosure(&Closure{Name: "f"}), TypeClosure},
	}

	for _, tt := range tests {
		if tt.value.Type() != tt.expected {
			t.Errorf("%v: expected type %v, got %v", tt.value, tt.expected, tt.value.Type())
		}
	}
}

func TestValueEquality(t *testing.T) {
	if !Number(1).Equals(Number(1)) {
		t.Error("equal numbers should compare equal")
	}
	if Number(1).Equals(Number(2)) {
		t.Error("different numbers should not compare equal")
	}
	if Number(1).Equals(String("1")) {
		t.Error("values of different types should not compare equal")
	}
	if !Atom("ok").Equals(Atom("ok")) {
		t.Error("atoms with the same name should compare equal")
	}
	if Atom("ok").Equals(String("ok")) {
		t.Error("an atom and a string should not compare equal")
	}
	if !Nil.Equals(Nil) {
		t.Error("nil equals nil")
	}
}

func TestTaskFrame(t *testing.T) {
	closure := &Closure{Name: "main", Entry: 7}
	root := NewTask(closure, nil)

	if root.IP != 7 {
		t.Errorf("task ip: expected closure entry 7, got %d", root.IP)
	}
	if root.Index != 0 || root.Parent != nil {
		t.Errorf("root task: index=%d parent=%v", root.Index, root.Parent)
	}
	if root.State != Spawned {
		t.Errorf("fresh task state: %v", root.State)
	}
	if len(root.Stack) != 1 || !root.Stack[0].IsClosure() {
		t.Error("fresh task stack should hold its closure")
	}

	child := NewTask(&Closure{Name: "child"}, root)
	if child.Index != 1 || child.Parent != root {
		t.Errorf("child task: index=%d", child.Index)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{Nil, "nil"},
		{Bool(true), "true"},
		{Number(1.5), "1.5"},
		{String("hi"), "hi"},
		{Atom("ok"), ":ok"},
		{NewList(Number(1), Number(2)), "[1, 2]"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
