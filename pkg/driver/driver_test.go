package driver

import (
	"testing"

	"github.com/henry232323/saffron-lang/pkg/modules"
	"github.com/henry232323/saffron-lang/pkg/source"
	"github.com/henry232323/saffron-lang/pkg/types"
)

func TestCheckSourceClean(t *testing.T) {
	session := NewWithResolver(modules.NewMemoryResolver(nil))
	program, errs := session.CheckSource(source.NewReplSource(`var x: Number = 1;`))
	if program == nil || len(errs) != 0 {
		t.Fatalf("expected clean check, got errs=%v", errs)
	}
}

func TestCheckSourceSyntaxErrorSuppressesProgram(t *testing.T) {
	session := NewWithResolver(modules.NewMemoryResolver(nil))
	program, errs := session.CheckSource(source.NewReplSource(`var = 1;`))
	if program != nil {
		t.Error("expected nil program on syntax error")
	}
	if len(errs) == 0 {
		t.Error("expected syntax diagnostics")
	}
}

func TestReplSessionPersistsDefinitions(t *testing.T) {
	session := NewWithResolver(modules.NewMemoryResolver(nil))

	if _, errs := session.CheckRepl(`var x: Number = 1;`); len(errs) != 0 {
		t.Fatalf("first input: %v", errs)
	}

	resultType, errs := session.CheckRepl(`x + 1;`)
	if len(errs) != 0 {
		t.Fatalf("second input: %v", errs)
	}
	if resultType != types.Number {
		t.Errorf("expected Number, got %v", resultType)
	}
}

func TestReplReportsTypeOfExpression(t *testing.T) {
	session := NewWithResolver(modules.NewMemoryResolver(nil))
	resultType, errs := session.CheckRepl(`"hello";`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if resultType != types.String {
		t.Errorf("expected String, got %v", resultType)
	}
}

func TestBuiltinTaskModuleAvailable(t *testing.T) {
	session := NewWithResolver(modules.NewMemoryResolver(nil))
	_, errs := session.CheckRepl(`var handle: Task = Task.spawn(fun() => 1);`)
	if len(errs) != 0 {
		t.Fatalf("Task.spawn should check cleanly, got: %v", errs)
	}
}

func TestImportThroughSession(t *testing.T) {
	resolver := modules.NewMemoryResolver(map[string]string{
		"util.saf": `
fun double(x: Number): Number { return x * 2; }
var origin: Number = 0;
`,
	})
	session := NewWithResolver(resolver)

	_, errs := session.CheckRepl(`
import "util.saf" as Util;
var n: Number = Util.double(21);
var o: Number = Util.origin;
`)
	if len(errs) != 0 {
		t.Fatalf("import should check cleanly, got: %v", errs)
	}

	// The module type is cached by path in the session registry.
	first, ok := session.Registry().Lookup("util.saf")
	if !ok || first == nil {
		t.Fatal("module not registered after import")
	}

	if _, errs := session.CheckRepl(`import "util.saf" as Again;`); len(errs) != 0 {
		t.Fatalf("re-import: %v", errs)
	}
	second, _ := session.Registry().Lookup("util.saf")
	if first != second {
		t.Error("repeated imports should reuse the cached module type")
	}
}
