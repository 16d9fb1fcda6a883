package driver

import (
	"github.com/henry232323/saffron-lang/pkg/modules"
	"github.com/henry232323/saffron-lang/pkg/types"
)

// RegisterBuiltinModules installs the built-in modules into a registry.
// Builtins register under their path and their display name; the display
// name is what unqualified identifier lookups fall back to.
func RegisterBuiltinModules(registry *modules.Registry) {
	registry.RegisterBuiltin("task", "Task", taskModuleType())
}

// taskModuleType describes the Task module: spawn takes a closure and
// returns a task handle.
func taskModuleType() *types.SimpleType {
	module := types.NewSimpleType("Task")

	callback := &types.FunctorType{ReturnType: types.Any}
	module.Methods["spawn"] = &types.FunctorType{
		Arguments:  []types.Type{callback},
		ReturnType: types.TaskTypeDef,
	}

	return module
}
