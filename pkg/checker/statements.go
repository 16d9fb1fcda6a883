package checker

import (
	"github.com/henry232323/saffron-lang/pkg/parser"
	"github.com/henry232323/saffron-lang/pkg/types"
)

// checkStatement dispatches a single statement. Statements mostly yield no
// type; expression statements and blocks pass the inner type through for
// if-expressions and the REPL.
func (c *Checker) checkStatement(stmt parser.Statement) types.Type {
	switch s := stmt.(type) {
	case *parser.ExpressionStatement:
		return c.checkExpression(s.Expression)

	case *parser.VarStatement:
		c.checkVar(s)
		return nil

	case *parser.BlockStatement:
		return c.checkBlock(s.Statements)

	case *parser.FunctionStatement:
		return c.checkFunction(s)

	case *parser.ClassStatement:
		return c.checkClass(s)

	case *parser.InterfaceStatement:
		c.checkInterface(s)
		return nil

	case *parser.MethodSignature:
		// Only meaningful inside an interface body, which handles it.
		return nil

	case *parser.WhileStatement:
		c.checkExpression(s.Condition)
		c.checkStatement(s.Body)
		return nil

	case *parser.ForStatement:
		if s.Initializer != nil {
			c.checkStatement(s.Initializer)
		}
		c.checkExpression(s.Condition)
		c.checkExpression(s.Increment)
		c.checkStatement(s.Body)
		return nil

	case *parser.ReturnStatement:
		return c.checkReturn(s)

	case *parser.BreakStatement:
		return nil

	case *parser.ImportStatement:
		c.checkImport(s)
		return nil

	case *parser.TypeDeclaration:
		c.checkTypeDeclaration(s)
		return nil

	case *parser.EnumStatement, *parser.EnumItem:
		return nil
	}

	return nil
}

func (c *Checker) checkVar(s *parser.VarStatement) {
	varType := c.resolveTypeNode(s.TypeAnnotation)

	if s.Initializer != nil {
		oldAssignment := c.currentAssignmentType
		c.currentAssignmentType = varType

		valType := c.checkExpression(s.Initializer)
		if varType != nil {
			if !c.isSubType(valType, varType) {
				c.errorAt(s.Name, "Type mismatch in var")
			}
		} else {
			varType = valType
		}

		c.currentAssignmentType = oldAssignment
	}

	c.env.DefineLocal(s.Name.Literal, varType)
}

func (c *Checker) checkFunction(s *parser.FunctionStatement) types.Type {
	c.pushEnv(s.Kind)

	functor := &types.FunctorType{
		Generics: c.processGenericParams(s.Generics),
	}

	oldFunc := c.currentFuncType
	c.currentFuncType = functor

	for _, param := range s.Params {
		var argType types.Type
		if param.Type != nil {
			argType = c.resolveTypeNode(param.Type)
		} else {
			argType = types.Any
		}
		functor.Arguments = append(functor.Arguments, argType)
		c.env.DefineLocal(param.Name.Literal, argType)
	}

	functor.ReturnType = c.resolveTypeNode(s.ReturnType)
	c.checkStatements(s.Body)
	if functor.ReturnType == nil {
		functor.ReturnType = types.Nil
	}

	c.popEnv()
	c.env.DefineLocal(s.Name.Literal, functor)
	c.currentFuncType = oldFunc

	return functor
}

func (c *Checker) checkClass(s *parser.ClassStatement) types.Type {
	classType := types.NewSimpleType(s.Name.Literal)

	// Bind the name before the body is processed so methods can refer to
	// the class being defined.
	c.env.DefineTypeDef(s.Name.Literal, classType)

	oldClass := c.currentClassType
	c.currentClassType = classType

	classFunctor := &types.FunctorType{}

	c.pushEnv(parser.FunctionKindInitializer)
	classType.Generics = c.processGenericParams(s.Generics)

	if s.SuperClass != nil {
		superDef := c.getTypeDef(s.SuperClass.Name)
		if superSimple, ok := superDef.(*types.SimpleType); ok {
			for name, t := range superSimple.Fields {
				classType.Fields[name] = t
			}
			for name, t := range superSimple.Methods {
				classType.Methods[name] = t
			}
			classType.SuperType = superSimple
		} else if superDef != nil {
			c.errorAt(s.SuperClass.Name, "Superclass must be a class.")
		}
	}

	for _, member := range s.Body {
		switch m := member.(type) {
		case *parser.FunctionStatement:
			c.checkMethod(classType, classFunctor, m)
		case *parser.VarStatement:
			fieldType := c.resolveTypeNode(m.TypeAnnotation)
			if m.Initializer != nil {
				valType := c.checkExpression(m.Initializer)
				if !c.isSubType(valType, fieldType) {
					c.errorAt(m.Name, "Type mismatch.")
				}
			}
			classType.Fields[m.Name.Literal] = fieldType
		}
	}

	classFunctor.ReturnType = classType

	c.popEnv()

	// The class's value binding is its constructor; the type definition is
	// the class type itself.
	c.env.DefineLocal(s.Name.Literal, classFunctor)
	c.env.DefineTypeDef(s.Name.Literal, classType)

	c.currentClassType = oldClass
	return classType
}

func (c *Checker) checkMethod(classType *types.SimpleType, classFunctor *types.FunctorType, m *parser.FunctionStatement) {
	c.pushEnv(m.Kind)

	c.env.DefineLocal("this", classType)

	methodType := &types.FunctorType{
		Generics: c.processGenericParams(m.Generics),
	}
	oldFunc := c.currentFuncType
	c.currentFuncType = methodType

	for _, param := range m.Params {
		var argType types.Type
		if param.Type != nil {
			argType = c.resolveTypeNode(param.Type)
		} else {
			argType = types.Any
		}
		methodType.Arguments = append(methodType.Arguments, argType)
		c.env.DefineLocal(param.Name.Literal, argType)
	}

	// Install before checking the body so the method can call itself.
	classType.Methods[m.Name.Literal] = methodType

	if m.Kind != parser.FunctionKindInitializer {
		methodType.ReturnType = c.resolveTypeNode(m.ReturnType)
	} else {
		methodType.ReturnType = classType
		classFunctor.Arguments = methodType.Arguments
	}

	c.checkStatements(m.Body)
	if methodType.ReturnType == nil {
		methodType.ReturnType = types.Nil
	}

	c.popEnv()
	c.currentFuncType = oldFunc
}

func (c *Checker) checkInterface(s *parser.InterfaceStatement) {
	interfaceType := types.NewInterfaceType(s.Name.Literal)
	c.env.DefineTypeDef(s.Name.Literal, interfaceType)

	if s.SuperType != nil {
		superDef := c.getTypeDef(s.SuperType.Name)
		if superIface, ok := superDef.(*types.InterfaceType); ok {
			for name, t := range superIface.Fields {
				interfaceType.Fields[name] = t
			}
			for name, t := range superIface.Methods {
				interfaceType.Methods[name] = t
			}
			interfaceType.SuperType = superIface
		} else if superDef != nil {
			c.errorAt(s.SuperType.Name, "Parent type for interface may only be an interface.")
		}
	}

	c.pushEnv(parser.FunctionKindInitializer)
	interfaceType.Generics = c.processGenericParams(s.Generics)

	for _, member := range s.Body {
		switch m := member.(type) {
		case *parser.MethodSignature:
			interfaceType.Methods[m.Name.Literal] = c.checkMethodSignature(interfaceType, m)
		case *parser.VarStatement:
			interfaceType.Fields[m.Name.Literal] = c.resolveTypeNode(m.TypeAnnotation)
		}
	}

	c.popEnv()
}

func (c *Checker) checkMethodSignature(interfaceType *types.InterfaceType, m *parser.MethodSignature) *types.FunctorType {
	hasGenerics := len(m.Generics) > 0
	if hasGenerics {
		c.pushEnv(parser.FunctionKindFunction)
	}

	sig := &types.FunctorType{}
	if hasGenerics {
		sig.Generics = c.processGenericParams(m.Generics)
	}

	for _, param := range m.Params {
		if param.Type != nil {
			sig.Arguments = append(sig.Arguments, c.resolveTypeNode(param.Type))
		} else {
			sig.Arguments = append(sig.Arguments, types.Any)
		}
	}

	if m.Kind != parser.FunctionKindInitializer {
		sig.ReturnType = c.resolveTypeNode(m.ReturnType)
	} else {
		sig.ReturnType = interfaceType
	}
	if sig.ReturnType == nil {
		sig.ReturnType = types.Nil
	}

	if hasGenerics {
		c.popEnv()
	}
	return sig
}

func (c *Checker) checkReturn(s *parser.ReturnStatement) types.Type {
	value := c.checkExpression(s.Value)

	if c.currentFuncType == nil {
		c.errorAt(s.Keyword, "Can't return from top-level code.")
		return value
	}

	if c.currentFuncType.ReturnType != nil {
		if !c.isSubType(value, c.currentFuncType.ReturnType) {
			c.errorAt(s.Keyword, "Return type mismatch")
		}
	} else {
		c.currentFuncType.ReturnType = value
	}

	return value
}

func (c *Checker) checkImport(s *parser.ImportStatement) {
	c.checkExpression(s.Path)
	moduleType := c.CheckModule(s.Path.Token)
	c.env.DefineLocal(s.Name.Literal, moduleType)
}

func (c *Checker) checkTypeDeclaration(s *parser.TypeDeclaration) {
	c.pushEnv(parser.FunctionKindInitializer)
	c.processGenericParams(s.Generics)
	result := c.resolveTypeNode(s.Target)
	c.popEnv()

	c.env.DefineTypeDef(s.Name.Literal, result)
}
