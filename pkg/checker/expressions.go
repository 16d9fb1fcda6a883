package checker

import (
	"github.com/henry232323/saffron-lang/pkg/lexer"
	"github.com/henry232323/saffron-lang/pkg/parser"
	"github.com/henry232323/saffron-lang/pkg/types"
)

// checkExpression resolves an expression's type and caches it on the node.
func (c *Checker) checkExpression(expr parser.Expression) types.Type {
	if expr == nil {
		return nil
	}
	t := c.resolveExpression(expr)
	expr.SetComputedType(t)
	return t
}

func (c *Checker) resolveExpression(expr parser.Expression) types.Type {
	switch e := expr.(type) {
	case *parser.Literal:
		return getTypeOf(e.Value)

	case *parser.Unary:
		right := c.checkExpression(e.Right)
		switch e.Operator.Type {
		case lexer.BANG:
			return types.Bool
		case lexer.MINUS:
			return right
		}
		return nil

	case *parser.Binary:
		c.checkExpression(e.Right)
		return c.checkExpression(e.Left)

	case *parser.Logical:
		c.checkExpression(e.Left)
		c.checkExpression(e.Right)
		return types.Bool

	case *parser.Grouping:
		return c.checkExpression(e.Inner)

	case *parser.Variable:
		return c.getVariableType(e.Name)

	case *parser.Assign:
		return c.checkAssign(e)

	case *parser.Call:
		return c.checkCall(e)

	case *parser.GetItem:
		return c.checkGetItem(e)

	case *parser.Get:
		return c.checkGet(e)

	case *parser.Set:
		return c.checkSet(e)

	case *parser.Super:
		return c.checkSuper(e)

	case *parser.This:
		if c.currentClassType == nil {
			c.errorAt(e.Keyword, "Can't use 'this' outside of a class.")
			return nil
		}
		return c.currentClassType

	case *parser.Yield:
		c.checkExpression(e.Value)
		return types.Any

	case *parser.Lambda:
		return c.checkLambda(e)

	case *parser.ListLiteral:
		return c.checkListLiteral(e)

	case *parser.MapLiteral:
		return c.checkMapLiteral(e)

	case *parser.IfExpression:
		c.checkExpression(e.Condition)
		result := c.checkStatement(e.ThenBranch)
		if e.ElseBranch != nil {
			c.checkStatement(e.ElseBranch)
		}
		return result
	}

	return nil
}

func (c *Checker) checkAssign(e *parser.Assign) types.Type {
	valueType := c.checkExpression(e.Value)
	namedType := c.getVariableType(e.Name)

	if !c.isSubType(valueType, namedType) {
		c.errorAt(e.Name, "Type mismatch")
	}

	if namedType != nil {
		return namedType
	}
	return valueType
}

func (c *Checker) checkCall(e *parser.Call) types.Type {
	calleeType := c.checkExpression(e.Callee)
	if calleeType == nil {
		return nil
	}

	functor, ok := calleeType.(*types.FunctorType)
	if !ok {
		c.errorAt(e.Paren, "Type is not callable")
		return nil
	}

	// Argument-count mismatches pass silently, pending varargs; surplus
	// arguments are still checked for their own errors below.

	c.pushEnv(parser.FunctionKindFunction)
	for _, def := range functor.Generics {
		c.env.registerGeneric(def)
	}

	matched := true
	for i, arg := range e.Arguments {
		argType := c.checkExpression(arg)
		if i < len(functor.Arguments) {
			if !c.isSubType(argType, functor.Arguments[i]) {
				c.errorAt(e.Paren, "Type mismatch")
				matched = false
				break
			}
		}
	}

	// Concretize the return type against the bindings inferred from the
	// arguments before the call environment goes away.
	returnType := c.substituteGenerics(functor.ReturnType)

	c.popEnv()

	if !matched {
		return nil
	}
	return returnType
}

func (c *Checker) checkGetItem(e *parser.GetItem) types.Type {
	objType := c.checkExpression(e.Object)
	if objType == nil {
		return nil
	}

	if c.isSubType(objType, types.ListTypeDef) {
		indexType := c.checkExpression(e.Index)
		if !c.isSubType(indexType, types.Number) {
			c.errorAt(e.Bracket, "Index must be a number")
			return nil
		}
		if gt, ok := objType.(*types.GenericType); ok && len(gt.Arguments) > 0 {
			return gt.Arguments[0]
		}
		return types.Never
	}

	if c.isSubType(objType, types.MapTypeDef) {
		indexType := c.checkExpression(e.Index)
		gt, ok := objType.(*types.GenericType)
		if !ok || len(gt.Arguments) != 2 {
			return types.Never
		}
		if !c.isSubType(indexType, gt.Arguments[0]) {
			c.errorAt(e.Bracket, "Key type mismatch")
			return nil
		}
		return gt.Arguments[1]
	}

	c.errorAt(e.Bracket, "Cannot get item on something other than a list or map")
	return nil
}

// rootTypeOf finds the type whose member tables a field access resolves
// against.
func (c *Checker) rootTypeOf(objType types.Type, name lexer.Token) types.Type {
	switch t := objType.(type) {
	case *types.SimpleType, *types.InterfaceType:
		return objType
	case *types.GenericType:
		return t.Target
	case *types.GenericTypeDefinition:
		if t.Extends == nil {
			c.errorAt(name, "Attempting to get from invalid generic type.")
			return nil
		}
		return t.Extends
	}
	c.errorAt(name, "Attempting to get from invalid type.")
	return nil
}

// lookupMember resolves a name against a type's method table, then its
// field table.
func (c *Checker) lookupMember(root types.Type, name lexer.Token) types.Type {
	methods, fields, ok := memberTables(root)
	if !ok {
		c.errorAt(name, "Attempting to get from invalid type.")
		return nil
	}
	if t, found := methods[name.Literal]; found {
		return t
	}
	if t, found := fields[name.Literal]; found {
		return t
	}
	c.errorAt(name, "Invalid field")
	return nil
}

func (c *Checker) checkGet(e *parser.Get) types.Type {
	objType := c.checkExpression(e.Object)
	if objType == nil {
		return nil
	}

	root := c.rootTypeOf(objType, e.Name)
	if root == nil {
		return nil
	}
	return c.lookupMember(root, e.Name)
}

func (c *Checker) checkSet(e *parser.Set) types.Type {
	valueType := c.checkExpression(e.Value)

	objType := c.checkExpression(e.Object)
	if objType == nil {
		return nil
	}

	root := c.rootTypeOf(objType, e.Name)
	if root == nil {
		return nil
	}

	fieldType := c.lookupMember(root, e.Name)
	if fieldType == nil {
		return nil
	}

	if !c.isSubType(valueType, fieldType) {
		c.errorAt(e.Name, "Type mismatch in setter")
	}

	return fieldType
}

func (c *Checker) checkSuper(e *parser.Super) types.Type {
	currentClass, ok := c.currentClassType.(*types.SimpleType)
	if !ok {
		c.errorAt(e.Keyword, "Can't use 'super' outside of a class.")
		return nil
	}

	superType, ok := currentClass.SuperType.(*types.SimpleType)
	if !ok {
		c.errorAt(e.Keyword, "Can't use 'super' in a class with no superclass.")
		return nil
	}

	return c.lookupMember(superType, e.Method)
}

func (c *Checker) checkLambda(e *parser.Lambda) types.Type {
	c.pushEnv(parser.FunctionKindFunction)

	functor := &types.FunctorType{
		Generics: c.processGenericParams(e.Generics),
	}

	oldFunc := c.currentFuncType
	c.currentFuncType = functor

	for _, param := range e.Params {
		var argType types.Type
		if param.Type != nil {
			argType = c.resolveTypeNode(param.Type)
		} else {
			argType = types.Any
		}
		functor.Arguments = append(functor.Arguments, argType)
		c.env.DefineLocal(param.Name.Literal, argType)
	}

	functor.ReturnType = c.resolveTypeNode(e.ReturnType)
	c.checkStatements(e.Body)
	if functor.ReturnType == nil {
		functor.ReturnType = types.Nil
	}

	c.popEnv()
	c.currentFuncType = oldFunc

	return functor
}

func (c *Checker) checkListLiteral(e *parser.ListLiteral) types.Type {
	if c.currentAssignmentType == nil {
		itemType := types.Type(types.Never)
		for i, item := range e.Items {
			t := c.checkExpression(item)
			if i == 0 && t != nil {
				itemType = t
			}
		}
		return &types.GenericType{Target: types.ListTypeDef, Arguments: []types.Type{itemType}}
	}

	expected, ok := c.currentAssignmentType.(*types.GenericType)
	if !ok {
		c.errorAt(e.Bracket, "Type mismatch")
		return c.currentAssignmentType
	}
	if !c.isSubType(types.ListTypeDef, expected.Target) {
		c.errorAt(e.Bracket, "Type mismatch, incompatible type")
		return expected
	}
	if len(expected.Arguments) != 1 {
		c.errorAt(e.Bracket, "Type mismatch, missing type annotation")
		return expected
	}

	itemType := expected.Arguments[0]
	oldAssignment := c.currentAssignmentType
	c.currentAssignmentType = itemType
	for _, item := range e.Items {
		evalType := c.checkExpression(item)
		if !c.isSubType(evalType, itemType) {
			c.errorAt(e.Bracket, "Type mismatch, incompatible types")
		}
	}
	c.currentAssignmentType = oldAssignment

	return expected
}

func (c *Checker) checkMapLiteral(e *parser.MapLiteral) types.Type {
	if c.currentAssignmentType == nil {
		keyType := types.Type(types.Never)
		valueType := types.Type(types.Never)
		for i := range e.Keys {
			kt := c.checkExpression(e.Keys[i])
			vt := c.checkExpression(e.Values[i])
			if i == 0 {
				if kt != nil {
					keyType = kt
				}
				if vt != nil {
					valueType = vt
				}
			}
		}
		return &types.GenericType{Target: types.MapTypeDef, Arguments: []types.Type{keyType, valueType}}
	}

	expected, ok := c.currentAssignmentType.(*types.GenericType)
	if !ok {
		c.errorAt(e.Brace, "Type mismatch")
		return c.currentAssignmentType
	}
	if !c.isSubType(types.MapTypeDef, expected.Target) {
		c.errorAt(e.Brace, "Type mismatch, incompatible type")
		return expected
	}
	if len(expected.Arguments) != 2 {
		c.errorAt(e.Brace, "Type mismatch, missing type annotation")
		return expected
	}

	keyType := expected.Arguments[0]
	valueType := expected.Arguments[1]
	oldAssignment := c.currentAssignmentType
	for i := range e.Keys {
		c.currentAssignmentType = keyType
		kt := c.checkExpression(e.Keys[i])
		if !c.isSubType(kt, keyType) {
			c.errorAt(e.Brace, "Map key type mismatch, incompatible types")
		}

		c.currentAssignmentType = valueType
		vt := c.checkExpression(e.Values[i])
		if !c.isSubType(vt, valueType) {
			c.errorAt(e.Brace, "Map value type mismatch, incompatible types")
		}
	}
	c.currentAssignmentType = oldAssignment

	return expected
}
