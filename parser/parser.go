// Package parser builds lualite syntax trees from source text.
//
// The expression parser is a Pratt parser: each token type may have a prefix
// parse function and an infix parse function, and a precedence table drives
// how far an infix loop extends to the right. Statements and declarations
// are parsed by recursive descent around that core.
package parser

import (
	"strconv"

	"github.com/deepnoodle-ai/lualite/ast"
	"github.com/deepnoodle-ai/lualite/internal/lexer"
	"github.com/deepnoodle-ai/lualite/token"
	"github.com/hashicorp/go-multierror"
)

// MaxErrors is the number of parse errors collected before giving up.
const MaxErrors = 10

// Operator precedence levels, from loosest to tightest binding.
const (
	_ int = iota
	lowest
	logicalOr  // or
	logicalAnd // and
	equality   // == !=
	comparison // < <= > >=
	sum        // + -
	product    // * / %
	unary      // -x, not x
	power      // ^ (right associative)
	postfix    // f(x), a[i]
)

var precedences = map[token.Type]int{
	token.OR:       logicalOr,
	token.AND:      logicalAnd,
	token.EQ:       equality,
	token.NOT_EQ:   equality,
	token.LT:       comparison,
	token.LT_EQ:    comparison,
	token.GT:       comparison,
	token.GT_EQ:    comparison,
	token.PLUS:     sum,
	token.MINUS:    sum,
	token.ASTERISK: product,
	token.SLASH:    product,
	token.PERCENT:  product,
	token.CARET:    power,
	token.LPAREN:   postfix,
	token.LBRACKET: postfix,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the filename attached to token positions, for error
// messages.
func WithFilename(name string) Option {
	return func(p *Parser) { p.filename = name }
}

// Parser parses lualite source into an *ast.Program.
type Parser struct {
	lexer     *lexer.Lexer
	filename  string
	curToken  token.Token
	peekToken token.Token
	errors    []error
	fatal     bool

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// Parse is a shortcut that creates a Parser for the input and runs it.
func Parse(input string, options ...Option) (*ast.Program, error) {
	return New(input, options...).ParseProgram()
}

// New returns a Parser for the given input.
func New(input string, options ...Option) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" {
		p.lexer.SetFilename(p.filename)
	}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:  p.parseIdent,
		token.NUMBER: p.parseNumber,
		token.STRING: p.parseString,
		token.TRUE:   p.parseBool,
		token.FALSE:  p.parseBool,
		token.NIL:    p.parseNil,
		token.MINUS:  p.parsePrefix,
		token.NOT:    p.parsePrefix,
		token.LPAREN: p.parseGroup,
	}
	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseInfix,
		token.MINUS:    p.parseInfix,
		token.ASTERISK: p.parseInfix,
		token.SLASH:    p.parseInfix,
		token.PERCENT:  p.parseInfix,
		token.CARET:    p.parseInfix,
		token.LT:       p.parseInfix,
		token.LT_EQ:    p.parseInfix,
		token.GT:       p.parseInfix,
		token.GT_EQ:    p.parseInfix,
		token.EQ:       p.parseInfix,
		token.NOT_EQ:   p.parseInfix,
		token.AND:      p.parseInfix,
		token.OR:       p.parseInfix,
		token.LPAREN:   p.parseCall,
		token.LBRACKET: p.parseIndex,
	}

	// Prime curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// ParseProgram parses the entire input: a sequence of function declarations.
// Duplicate declarations are rejected here, so a parsed program always has
// unique function names.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	declared := make(map[string]bool)
	for !p.curTokenIs(token.EOF) && !p.fatal {
		if !p.curTokenIs(token.FUNCTION) {
			p.addError(newExpectedError(p.curToken.StartPosition,
				`"function"`, p.curToken))
			p.synchronize()
			continue
		}
		fn := p.parseFunction()
		if fn == nil {
			p.synchronize()
			continue
		}
		if declared[fn.Name.Name()] {
			p.addError(newError(fn.Name.Pos(),
				"function %q is declared more than once", fn.Name.Name()))
		} else {
			declared[fn.Name.Name()] = true
			program.Functions = append(program.Functions, fn)
		}
		p.nextToken()
	}
	if len(p.errors) > 0 {
		var combined error
		for _, err := range p.errors {
			combined = multierror.Append(combined, err)
		}
		return nil, combined
	}
	return program, nil
}

// Errors returns the errors collected so far.
func (p *Parser) Errors() []error {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	tok, err := p.lexer.Next()
	if err != nil {
		p.addError(err)
		p.fatal = true
		tok = token.Token{Type: token.EOF}
	}
	p.peekToken = tok
}

func (p *Parser) curTokenIs(t token.Type) bool { return p.curToken.Type == t }

func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(newExpectedError(p.peekToken.StartPosition,
		strconv.Quote(string(t)), p.peekToken))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowest
}

func (p *Parser) addError(err error) {
	p.errors = append(p.errors, err)
	if len(p.errors) >= MaxErrors {
		p.fatal = true
	}
}

// synchronize skips tokens until the start of the next function declaration
// so that one bad declaration doesn't hide errors in the rest of the input.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.FUNCTION) && !p.fatal {
		p.nextToken()
	}
}

func (p *Parser) parseFunction() *ast.Function {
	fn := &ast.Function{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = &ast.Ident{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		fn.Parameters = append(fn.Parameters, &ast.Ident{Token: p.curToken})
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			fn.Parameters = append(fn.Parameters, &ast.Ident{Token: p.curToken})
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	body, ok := p.parseBlock(token.END)
	if !ok {
		return nil
	}
	fn.Body = body
	return fn
}

// parseBlock parses statements until one of the terminator tokens appears.
// On success the current token is the terminator. The current token on
// entry is the token just before the block (e.g. "then" or "do").
func (p *Parser) parseBlock(terminators ...token.Type) ([]ast.Statement, bool) {
	var statements []ast.Statement
	p.nextToken()
	for {
		if p.fatal {
			return statements, false
		}
		if p.curTokenIs(token.EOF) {
			p.addError(newExpectedError(p.curToken.StartPosition,
				terminatorList(terminators), p.curToken))
			return statements, false
		}
		for _, t := range terminators {
			if p.curTokenIs(t) {
				return statements, true
			}
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return statements, false
		}
		statements = append(statements, stmt)
		p.nextToken()
	}
}

func terminatorList(terminators []token.Type) string {
	out := ""
	for i, t := range terminators {
		if i > 0 {
			out += " or "
		}
		out += strconv.Quote(string(t))
	}
	return out
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses either an assignment or a bare expression
// statement. Validity of the assignment target is checked by the compiler,
// not here, so that "f() = 1" reports an invalid target rather than a
// confusing token error.
func (p *Parser) parseSimpleStatement() ast.Statement {
	expr := p.parseExpression(lowest)
	if expr == nil {
		return nil
	}
	if !p.peekTokenIs(token.ASSIGN) {
		return &ast.ExprStatement{Value: expr}
	}
	p.nextToken()
	assignToken := p.curToken
	p.nextToken()
	value := p.parseExpression(lowest)
	if value == nil {
		return nil
	}
	return &ast.Assign{Token: assignToken, Target: expr, Value: value}
}

func (p *Parser) parseIf() ast.Statement {
	ifToken := p.curToken
	p.nextToken()
	condition := p.parseExpression(lowest)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(token.THEN) {
		return nil
	}
	consequence, ok := p.parseBlock(token.END, token.ELSE, token.ELSEIF)
	if !ok {
		return nil
	}
	stmt := &ast.If{Token: ifToken, Condition: condition, Consequence: consequence}
	switch p.curToken.Type {
	case token.END:
	case token.ELSE:
		alternative, ok := p.parseBlock(token.END)
		if !ok {
			return nil
		}
		stmt.Alternative = alternative
	case token.ELSEIF:
		// An elseif chain shares the single trailing "end", so the chain
		// parses as a nested if statement in the alternative block.
		nested := p.parseIf()
		if nested == nil {
			return nil
		}
		stmt.Alternative = []ast.Statement{nested}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	whileToken := p.curToken
	p.nextToken()
	condition := p.parseExpression(lowest)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(token.DO) {
		return nil
	}
	body, ok := p.parseBlock(token.END)
	if !ok {
		return nil
	}
	return &ast.While{Token: whileToken, Condition: condition, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	stmt := &ast.Return{Token: p.curToken}
	// The return value is optional: parse one only if the next token can
	// start an expression.
	if _, ok := p.prefixParseFns[p.peekToken.Type]; !ok {
		return stmt
	}
	p.nextToken()
	value := p.parseExpression(lowest)
	if value == nil {
		return nil
	}
	stmt.Value = value
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.addError(newError(p.curToken.StartPosition,
			"unexpected token %q in expression", p.curToken.Literal))
		return nil
	}
	left := prefix()
	for left != nil && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdent() ast.Expression {
	return &ast.Ident{Token: p.curToken}
}

func (p *Parser) parseNumber() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(newError(p.curToken.StartPosition,
			"invalid number literal %q", p.curToken.Literal))
		return nil
	}
	return &ast.Number{Token: p.curToken, Value: value}
}

func (p *Parser) parseString() ast.Expression {
	return &ast.String_{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBool() ast.Expression {
	return &ast.Bool{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.Nil{Token: p.curToken}
}

func (p *Parser) parsePrefix() ast.Expression {
	expr := &ast.Prefix{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(unary)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroup() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(lowest)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	expr := &ast.Infix{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := precedences[p.curToken.Type]
	if p.curTokenIs(token.CARET) {
		// Right associative: a ^ b ^ c parses as a ^ (b ^ c).
		precedence--
	}
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCall(left ast.Expression) ast.Expression {
	name, ok := left.(*ast.Ident)
	if !ok {
		p.addError(newError(p.curToken.StartPosition,
			"expected a function name before the call arguments"))
		return nil
	}
	call := &ast.Call{Token: p.curToken, Name: name}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	p.nextToken()
	arg := p.parseExpression(lowest)
	if arg == nil {
		return nil
	}
	call.Arguments = append(call.Arguments, arg)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(lowest)
		if arg == nil {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return call
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	expr := &ast.Index{Token: p.curToken, Left: left}
	p.nextToken()
	index := p.parseExpression(lowest)
	if index == nil {
		return nil
	}
	expr.Index = index
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}
