package parser

import (
	"strconv"

	"github.com/henry232323/saffron-lang/pkg/errors"
	"github.com/henry232323/saffron-lang/pkg/lexer"
	"github.com/henry232323/saffron-lang/pkg/source"
	"github.com/henry232323/saffron-lang/pkg/vm"
)

// Precedence levels for the Pratt table, low to high.
const (
	PREC_NONE int = iota
	PREC_ASSIGNMENT   // =
	PREC_YIELD        // yield, |>
	PREC_OR           // or
	PREC_AND          // and
	PREC_EQUALITY     // == !=
	PREC_COMPARISON   // < > <= >=
	PREC_TERM         // + - %
	PREC_FACTOR       // * /
	PREC_UNARY        // ! -
	PREC_CALL         // . () []
	PREC_PRIMARY
)

// Parsing function types for the Pratt parser. Prefix rules are told
// whether an assignment target is permitted at the current precedence.
type (
	prefixParseFn func(canAssign bool) Expression
	infixParseFn  func(left Expression, canAssign bool) Expression
)

type parseRule struct {
	prefix     prefixParseFn
	infix      infixParseFn
	precedence int
}

// Parser consumes a token stream and builds an AST. Errors never abort the
// parse; panic mode suppresses cascading diagnostics until the next
// statement boundary.
type Parser struct {
	l   *lexer.Lexer
	src *source.SourceFile

	previous lexer.Token
	current  lexer.Token

	panicMode bool
	hadError  bool
	errs      []errors.SaffronError

	rules map[lexer.TokenType]parseRule
}

// NewParser creates a parser over the given source file.
func NewParser(src *source.SourceFile) *Parser {
	p := &Parser{
		l:   lexer.NewLexer(src.Content),
		src: src,
	}

	p.rules = map[lexer.TokenType]parseRule{
		lexer.LPAREN:    {p.grouping, p.call, PREC_CALL},
		lexer.LBRACE:    {p.mapLiteral, nil, PREC_NONE},
		lexer.LBRACKET:  {p.listLiteral, p.getItem, PREC_CALL},
		lexer.PIPE_CALL: {nil, p.pipeCall, PREC_YIELD},
		lexer.DOT:       {nil, p.dot, PREC_CALL},
		lexer.MINUS:     {p.unary, p.binary, PREC_TERM},
		lexer.PLUS:      {nil, p.binary, PREC_TERM},
		lexer.PERCENT:   {nil, p.binary, PREC_TERM},
		lexer.SLASH:     {nil, p.binary, PREC_FACTOR},
		lexer.ASTERISK:  {nil, p.binary, PREC_FACTOR},
		lexer.BANG:      {p.unary, nil, PREC_NONE},
		lexer.NOT_EQ:    {nil, p.binary, PREC_EQUALITY},
		lexer.EQ:        {nil, p.binary, PREC_EQUALITY},
		lexer.GT:        {nil, p.binary, PREC_COMPARISON},
		lexer.GE:        {nil, p.binary, PREC_COMPARISON},
		lexer.LT:        {nil, p.binary, PREC_COMPARISON},
		lexer.LE:        {nil, p.binary, PREC_COMPARISON},
		lexer.IDENT:     {p.variable, nil, PREC_NONE},
		lexer.ATOM:      {p.atom, nil, PREC_NONE},
		lexer.STRING:    {p.stringLiteral, nil, PREC_NONE},
		lexer.NUMBER:    {p.number, nil, PREC_NONE},
		lexer.AND:       {nil, p.logical, PREC_AND},
		lexer.OR:        {nil, p.logical, PREC_OR},
		lexer.IF:        {p.ifExpression, nil, PREC_NONE},
		lexer.FALSE:     {p.literal, nil, PREC_NONE},
		lexer.TRUE:      {p.literal, nil, PREC_NONE},
		lexer.NIL:       {p.literal, nil, PREC_NONE},
		lexer.SUPER:     {p.superExpression, nil, PREC_NONE},
		lexer.THIS:      {p.thisExpression, nil, PREC_NONE},
		lexer.YIELD:     {p.yieldExpression, nil, PREC_NONE},
	}

	return p
}

// Errors returns the diagnostics accumulated so far.
func (p *Parser) Errors() []errors.SaffronError { return p.errs }

// HadError reports whether any syntax error occurred.
func (p *Parser) HadError() bool { return p.hadError }

// ParseProgram parses the whole input. On any syntax error the statement
// list is suppressed and nil is returned alongside the diagnostics.
func (p *Parser) ParseProgram() (*Program, []errors.SaffronError) {
	p.advance()

	program := &Program{}
	for !p.check(lexer.EOF) {
		program.Statements = append(program.Statements, p.declaration())
	}

	if p.hadError {
		return nil, p.errs
	}
	return program, p.errs
}

// --- Error reporting ---

func (p *Parser) errorAt(tok lexer.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	where := "at '" + tok.Literal + "'"
	if tok.Type == lexer.EOF {
		where = "at end"
	}

	p.errs = append(p.errs, &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.src,
		},
		Msg: where + ": " + message,
	})
}

func (p *Parser) errorAtPrevious(message string) { p.errorAt(p.previous, message) }
func (p *Parser) errorAtCurrent(message string)  { p.errorAt(p.current, message) }

func (p *Parser) synchronize() {
	p.panicMode = false

	for p.current.Type != lexer.EOF {
		if p.previous.Type == lexer.SEMICOLON {
			return
		}
		switch p.current.Type {
		case lexer.CLASS, lexer.FUN, lexer.VAR, lexer.FOR,
			lexer.IF, lexer.WHILE, lexer.RETURN:
			return
		}
		p.advance()
	}
}

// --- Token helpers ---

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.l.NextToken()
		if p.current.Type != lexer.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.current.Literal)
	}
}

func (p *Parser) consume(t lexer.TokenType, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *Parser) check(t lexer.TokenType) bool { return p.current.Type == t }

func (p *Parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

// --- Expression parsing ---

func (p *Parser) parsePrecedence(precedence int) Expression {
	p.advance()
	rule := p.rules[p.previous.Type]
	if rule.prefix == nil {
		p.errorAtPrevious("Expect expression.")
		return nil
	}

	canAssign := precedence <= PREC_ASSIGNMENT
	result := rule.prefix(canAssign)

	for precedence <= p.rules[p.current.Type].precedence {
		p.advance()
		infix := p.rules[p.previous.Type].infix
		if infix == nil {
			break
		}
		result = infix(result, canAssign)
	}

	if canAssign && p.match(lexer.ASSIGN) {
		p.errorAtPrevious("Invalid assignment target.")
	}

	return result
}

func (p *Parser) expression() Expression {
	if p.match(lexer.FUN) {
		return p.anonFunction(false)
	}
	return p.parsePrecedence(PREC_ASSIGNMENT)
}

func (p *Parser) number(canAssign bool) Expression {
	value, err := strconv.ParseFloat(p.previous.Literal, 64)
	if err != nil {
		p.errorAtPrevious("Invalid number literal.")
		value = 0
	}
	return &Literal{Token: p.previous, Value: vm.Number(value)}
}

func (p *Parser) stringLiteral(canAssign bool) Expression {
	return &Literal{Token: p.previous, Value: vm.String(p.previous.Literal)}
}

func (p *Parser) atom(canAssign bool) Expression {
	return &Literal{Token: p.previous, Value: vm.Atom(p.previous.Literal[1:])}
}

func (p *Parser) literal(canAssign bool) Expression {
	tok := p.previous
	switch tok.Type {
	case lexer.TRUE:
		return &Literal{Token: tok, Value: vm.Bool(true)}
	case lexer.FALSE:
		return &Literal{Token: tok, Value: vm.Bool(false)}
	default:
		return &Literal{Token: tok, Value: vm.Nil}
	}
}

func (p *Parser) grouping(canAssign bool) Expression {
	inner := p.expression()
	p.consume(lexer.RPAREN, "Expect ')' after expression.")
	return &Grouping{Inner: inner}
}

func (p *Parser) unary(canAssign bool) Expression {
	operator := p.previous
	right := p.parsePrecedence(PREC_UNARY)
	return &Unary{Operator: operator, Right: right}
}

func (p *Parser) binary(left Expression, canAssign bool) Expression {
	operator := p.previous
	rule := p.rules[operator.Type]
	right := p.parsePrecedence(rule.precedence + 1)
	return &Binary{Operator: operator, Left: left, Right: right}
}

func (p *Parser) logical(left Expression, canAssign bool) Expression {
	operator := p.previous
	right := p.parsePrecedence(p.rules[operator.Type].precedence)
	return &Logical{Operator: operator, Left: left, Right: right}
}

func (p *Parser) variable(canAssign bool) Expression {
	name := p.previous
	if canAssign && p.match(lexer.ASSIGN) {
		return &Assign{Name: name, Value: p.expression()}
	}
	return &Variable{Name: name}
}

func (p *Parser) thisExpression(canAssign bool) Expression {
	return &This{Keyword: p.previous}
}

func (p *Parser) superExpression(canAssign bool) Expression {
	keyword := p.previous
	p.consume(lexer.DOT, "Expect '.' after 'super'.")
	p.consume(lexer.IDENT, "Expect superclass method name.")
	return &Super{Keyword: keyword, Method: p.previous}
}

func (p *Parser) yieldExpression(canAssign bool) Expression {
	result := &Yield{Keyword: p.previous}
	if !p.check(lexer.SEMICOLON) && !p.check(lexer.RBRACE) &&
		!p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		result.Value = p.parsePrecedence(PREC_YIELD)
	}
	return result
}

func (p *Parser) argumentList() []Expression {
	var items []Expression
	if !p.check(lexer.RPAREN) {
		for {
			if p.check(lexer.RPAREN) {
				break
			}
			items = append(items, p.expression())
			if len(items) > 255 {
				p.errorAtPrevious("Can't have more than 255 arguments.")
			}
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.consume(lexer.RPAREN, "Expect ')' after arguments.")
	return items
}

func (p *Parser) call(left Expression, canAssign bool) Expression {
	paren := p.previous
	return &Call{Callee: left, Paren: paren, Arguments: p.argumentList()}
}

func (p *Parser) getItem(left Expression, canAssign bool) Expression {
	bracket := p.previous
	index := p.expression()
	p.consume(lexer.RBRACKET, "Expect ']' after index.")
	return &GetItem{Object: left, Bracket: bracket, Index: index}
}

// pipeCall rewrites `left |> callee(args)` into `callee(left, args)`.
func (p *Parser) pipeCall(left Expression, canAssign bool) Expression {
	result := p.parsePrecedence(PREC_CALL)
	call, ok := result.(*Call)
	if !ok {
		p.errorAtCurrent("Expected functional call after pipe operator!")
		return left
	}
	call.Arguments = append([]Expression{left}, call.Arguments...)
	return call
}

func (p *Parser) dot(left Expression, canAssign bool) Expression {
	p.consume(lexer.IDENT, "Expect property name after '.'.")
	name := p.previous

	if p.match(lexer.ASSIGN) {
		return &Set{Object: left, Name: name, Value: p.expression()}
	}
	return &Get{Object: left, Name: name}
}

func (p *Parser) listLiteral(canAssign bool) Expression {
	bracket := p.previous
	var items []Expression
	if !p.check(lexer.RBRACKET) {
		for {
			if p.check(lexer.RBRACKET) {
				break
			}
			items = append(items, p.expression())
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.consume(lexer.RBRACKET, "Expect ']' after list items.")
	return &ListLiteral{Bracket: bracket, Items: items}
}

func (p *Parser) mapLiteral(canAssign bool) Expression {
	brace := p.previous
	var keys, values []Expression
	if !p.check(lexer.RBRACE) {
		for {
			if p.check(lexer.RBRACE) {
				break
			}
			keys = append(keys, p.expression())
			p.consume(lexer.COLON, "Expect ':' after map key.")
			values = append(values, p.expression())
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.consume(lexer.RBRACE, "Expect '}' after map items.")
	return &MapLiteral{Brace: brace, Keys: keys, Values: values}
}

func (p *Parser) ifExpression(canAssign bool) Expression {
	token := p.previous
	p.consume(lexer.LPAREN, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(lexer.RPAREN, "Expect ')' after condition.")

	thenBranch := p.statement()
	var elseBranch Statement
	if p.match(lexer.ELSE) {
		elseBranch = p.statement()
	}

	return &IfExpression{Token: token, Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

// anonFunction parses a lambda after the `fun` keyword has been consumed.
// A single-expression body becomes a Return wrapped in a block.
func (p *Parser) anonFunction(canAssign bool) Expression {
	token := p.previous

	var generics []*TypeDeclaration
	if p.match(lexer.LT) {
		generics = p.genericArgDefinitions()
	}

	p.consume(lexer.LPAREN, "Expect '(' after fun keyword.")
	params := p.parameterList()

	var returnType TypeNode
	if p.match(lexer.COLON) {
		returnType = p.typeAnnotation()
	}
	p.consume(lexer.ARROW, "Expect '=>' after parameters.")

	var body []Statement
	if p.match(lexer.LBRACE) {
		body = p.blockStatements()
	} else {
		body = []Statement{&ReturnStatement{Keyword: p.previous, Value: p.expression()}}
	}

	return &Lambda{
		Token:      token,
		Generics:   generics,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}
}

// --- Statement parsing ---

func (p *Parser) declaration() Statement {
	var result Statement
	switch {
	case p.match(lexer.CLASS):
		result = p.classDeclaration()
	case p.match(lexer.FUN):
		result = p.funDeclaration()
	case p.match(lexer.VAR):
		result = p.varDeclaration(AssignVariable)
	case p.match(lexer.INTERFACE):
		result = p.interfaceDeclaration()
	case p.match(lexer.TYPE):
		result = p.typeDeclaration()
	default:
		result = p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
	return result
}

func (p *Parser) statement() Statement {
	var result Statement
	switch {
	case p.match(lexer.RETURN):
		result = p.returnStatement()
	case p.match(lexer.WHILE):
		result = p.whileStatement()
	case p.match(lexer.FOR):
		result = p.forStatement()
	case p.match(lexer.BREAK):
		keyword := p.previous
		p.match(lexer.SEMICOLON)
		result = &BreakStatement{Keyword: keyword}
	case p.match(lexer.LBRACE):
		token := p.previous
		result = &BlockStatement{Token: token, Statements: p.blockStatements()}
	case p.match(lexer.IMPORT):
		result = p.importStatement()
	default:
		result = p.expressionStatement()
	}

	for p.match(lexer.SEMICOLON) {
	}

	return result
}

func (p *Parser) expressionStatement() Statement {
	token := p.current
	expr := p.expression()
	p.match(lexer.SEMICOLON)
	return &ExpressionStatement{Token: token, Expression: expr}
}

// blockStatements parses declarations until the closing brace. The opening
// brace has already been consumed.
func (p *Parser) blockStatements() []Statement {
	var stmts []Statement
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		stmts = append(stmts, p.declaration())
	}
	p.consume(lexer.RBRACE, "Expect '}' after block.")
	return stmts
}

func (p *Parser) parseVariable(message string) lexer.Token {
	p.consume(lexer.IDENT, message)
	return p.previous
}

func (p *Parser) varDeclaration(kind AssignmentKind) Statement {
	token := p.previous
	name := p.parseVariable("Expect variable name.")

	var annotation TypeNode
	var initializer Expression

	if p.match(lexer.COLON) {
		annotation = p.typeAnnotation()
	}
	if p.match(lexer.ASSIGN) {
		initializer = p.expression()
	}

	if annotation == nil && initializer == nil {
		p.errorAtCurrent("Var without initializer must provide a type!")
	}

	p.match(lexer.SEMICOLON)

	return &VarStatement{
		Token:          token,
		Name:           name,
		AssignmentKind: kind,
		TypeAnnotation: annotation,
		Initializer:    initializer,
	}
}

func (p *Parser) typeDeclaration() Statement {
	token := p.previous
	name := p.parseVariable("Expect type name.")

	decl := &TypeDeclaration{Token: token, Name: name}
	if p.match(lexer.LT) {
		decl.Generics = p.genericArgDefinitions()
	}

	p.consume(lexer.ASSIGN, "Expect '=' after type name.")
	decl.Target = p.typeAnnotation()
	p.match(lexer.SEMICOLON)

	return decl
}

func (p *Parser) returnStatement() Statement {
	keyword := p.previous
	if p.match(lexer.SEMICOLON) || p.check(lexer.RBRACE) {
		return &ReturnStatement{Keyword: keyword}
	}
	value := p.expression()
	p.match(lexer.SEMICOLON)
	return &ReturnStatement{Keyword: keyword, Value: value}
}

func (p *Parser) whileStatement() Statement {
	token := p.previous
	p.consume(lexer.LPAREN, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(lexer.RPAREN, "Expect ')' after condition.")
	return &WhileStatement{Token: token, Condition: condition, Body: p.statement()}
}

func (p *Parser) forStatement() Statement {
	token := p.previous
	p.consume(lexer.LPAREN, "Expect '(' after 'for'.")

	var initializer Statement
	if p.match(lexer.SEMICOLON) {
		// No initializer.
	} else if p.match(lexer.VAR) {
		initializer = p.varDeclaration(AssignVariable)
	} else {
		initializer = p.expressionStatement()
	}

	var condition Expression
	if !p.match(lexer.SEMICOLON) {
		condition = p.expression()
		p.consume(lexer.SEMICOLON, "Expect ';' after loop condition.")
	}

	var increment Expression
	if !p.match(lexer.RPAREN) {
		increment = p.expression()
		p.consume(lexer.RPAREN, "Expect ')' after for clauses.")
	}

	return &ForStatement{
		Token:       token,
		Initializer: initializer,
		Condition:   condition,
		Increment:   increment,
		Body:        p.statement(),
	}
}

func (p *Parser) importStatement() Statement {
	token := p.previous
	p.consume(lexer.STRING, "Expect import path string.")
	path := &Literal{Token: p.previous, Value: vm.String(p.previous.Literal)}
	p.consume(lexer.AS, "Expect 'as' after import path.")
	name := p.parseVariable("Expect name after 'as' in import.")
	p.match(lexer.SEMICOLON)
	return &ImportStatement{Token: token, Path: path, Name: name}
}

// --- Functions, classes, interfaces ---

func (p *Parser) parameterList() []*Parameter {
	var params []*Parameter
	if !p.check(lexer.RPAREN) {
		for {
			if len(params) >= 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			name := p.parseVariable("Expect parameter name.")
			param := &Parameter{Name: name}
			if p.match(lexer.COLON) {
				param.Type = p.typeAnnotation()
			}
			params = append(params, param)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.consume(lexer.RPAREN, "Expect ')' after parameters.")
	return params
}

// function parses everything after the function's name: generics,
// parameters, optional return annotation, and a braced body.
func (p *Parser) function(kind FunctionKind) *FunctionStatement {
	token := p.previous

	var generics []*TypeDeclaration
	if p.match(lexer.LT) {
		generics = p.genericArgDefinitions()
	}

	p.consume(lexer.LPAREN, "Expect '(' after function name.")
	params := p.parameterList()

	var returnType TypeNode
	if p.match(lexer.COLON) {
		returnType = p.typeAnnotation()
	}

	p.consume(lexer.LBRACE, "Expect '{' before function body.")
	body := p.blockStatements()

	return &FunctionStatement{
		Token:      token,
		Kind:       kind,
		Generics:   generics,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}
}

func (p *Parser) funDeclaration() Statement {
	name := p.parseVariable("Expect function name.")
	fn := p.function(FunctionKindFunction)
	fn.Name = name
	return fn
}

func (p *Parser) method() Statement {
	p.consume(lexer.FUN, "Expect 'var' or 'fun' keyword.")
	p.consume(lexer.IDENT, "Expect method name.")
	name := p.previous

	kind := FunctionKindMethod
	if name.Literal == "init" {
		kind = FunctionKindInitializer
	}

	fn := p.function(kind)
	fn.Name = name
	return fn
}

func (p *Parser) classDeclaration() Statement {
	token := p.previous
	p.consume(lexer.IDENT, "Expect class name.")
	className := p.previous

	var generics []*TypeDeclaration
	if p.match(lexer.LT) {
		generics = p.genericArgDefinitions()
	}

	result := &ClassStatement{Token: token, Name: className, Generics: generics}

	if p.match(lexer.EXTENDS) {
		p.consume(lexer.IDENT, "Expect superclass name.")
		if className.Literal == p.previous.Literal {
			p.errorAtPrevious("A class can't inherit from itself.")
		}
		result.SuperClass = &Variable{Name: p.previous}
	}

	p.consume(lexer.LBRACE, "Expect '{' before class body.")

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		if p.match(lexer.VAR) {
			result.Body = append(result.Body, p.varDeclaration(AssignField))
		} else {
			result.Body = append(result.Body, p.method())
		}
	}

	p.consume(lexer.RBRACE, "Expect '}' after class body.")
	return result
}

func (p *Parser) methodSignature() Statement {
	token := p.current
	p.consume(lexer.FUN, "Expect 'fun' in interface body.")
	p.consume(lexer.IDENT, "Expect method name.")
	name := p.previous

	var generics []*TypeDeclaration
	if p.match(lexer.LT) {
		generics = p.genericArgDefinitions()
	}

	kind := FunctionKindMethod
	if name.Literal == "init" {
		kind = FunctionKindInitializer
	}

	p.consume(lexer.LPAREN, "Expect '(' after method name.")
	params := p.parameterList()

	var returnType TypeNode
	if p.match(lexer.COLON) {
		returnType = p.typeAnnotation()
	}
	p.match(lexer.SEMICOLON)

	return &MethodSignature{
		Token:      token,
		Name:       name,
		Kind:       kind,
		Generics:   generics,
		Params:     params,
		ReturnType: returnType,
	}
}

func (p *Parser) interfaceDeclaration() Statement {
	token := p.previous
	p.consume(lexer.IDENT, "Expect an interface name.")
	interfaceName := p.previous

	var generics []*TypeDeclaration
	if p.match(lexer.LT) {
		generics = p.genericArgDefinitions()
	}

	result := &InterfaceStatement{Token: token, Name: interfaceName, Generics: generics}

	if p.match(lexer.EXTENDS) {
		p.consume(lexer.IDENT, "Expect parent interface name.")
		if interfaceName.Literal == p.previous.Literal {
			p.errorAtPrevious("An interface can't extend from itself.")
		}
		result.SuperType = &Variable{Name: p.previous}
	}

	p.consume(lexer.LBRACE, "Expect '{' before interface body.")

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		if p.match(lexer.VAR) {
			result.Body = append(result.Body, p.varDeclaration(AssignField))
		} else {
			result.Body = append(result.Body, p.methodSignature())
		}
	}

	p.consume(lexer.RBRACE, "Expect '}' after interface body.")
	return result
}

// --- Type annotations ---

// genericArgDefinitions parses `name (extends T)?, ...` up to the closing
// '>'. The opening '<' has already been consumed.
func (p *Parser) genericArgDefinitions() []*TypeDeclaration {
	var generics []*TypeDeclaration

	if p.match(lexer.GT) {
		return generics
	}

	for {
		p.consume(lexer.IDENT, "Expected identifier in generic argument list.")
		decl := &TypeDeclaration{Token: p.previous, Name: p.previous}
		if p.match(lexer.EXTENDS) {
			decl.Target = p.typeAnnotation()
		}
		generics = append(generics, decl)
		if !p.match(lexer.COMMA) {
			break
		}
	}

	p.consume(lexer.GT, "Expected '>' after generic argument list.")
	return generics
}

// functorTypeAnnotation parses `args) => ret` after the opening paren has
// been consumed.
func (p *Parser) functorTypeAnnotation() *FunctorTypeNode {
	result := &FunctorTypeNode{Token: p.previous}

	if !p.check(lexer.RPAREN) {
		for {
			result.Arguments = append(result.Arguments, p.typeAnnotation())
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}

	p.consume(lexer.RPAREN, "Expect ')' after functor type arguments.")
	p.consume(lexer.ARROW, "Expect '=>' after functor type arguments.")
	result.ReturnType = p.typeAnnotation()

	return result
}

func (p *Parser) simpleTypeAnnotation() TypeNode {
	name := p.previous
	result := &SimpleTypeNode{Name: name}

	if p.match(lexer.LT) {
		for {
			result.Generics = append(result.Generics, p.typeAnnotation())
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.consume(lexer.GT, "Expect '>' after generic type argument.")
	}

	return result
}

// typeAnnotation recognizes `<gs>(args)=>ret`, `(args)=>ret`, and
// `Name<generics>?`, then folds a trailing `|` into a union.
func (p *Parser) typeAnnotation() TypeNode {
	var left TypeNode

	if p.match(lexer.LT) {
		generics := p.genericArgDefinitions()
		p.consume(lexer.LPAREN, "Expect '(' after generic functor arguments.")
		functor := p.functorTypeAnnotation()
		functor.Generics = generics
		left = functor
	} else if p.match(lexer.LPAREN) {
		left = p.functorTypeAnnotation()
	} else if p.match(lexer.IDENT) {
		left = p.simpleTypeAnnotation()
	} else {
		p.errorAtCurrent("Expect identifier or functor type.")
		return nil
	}

	if !p.match(lexer.PIPE) {
		return left
	}

	return &UnionTypeNode{Left: left, Right: p.typeAnnotation()}
}
