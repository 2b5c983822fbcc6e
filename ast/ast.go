// Package ast defines the abstract syntax tree representation of lualite
// programs as produced by the parser.
package ast

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/lualite/token"
)

// Node is implemented by all AST nodes.
type Node interface {
	// Pos returns the position of the first token belonging to the node.
	Pos() token.Position

	// String returns a lualite-syntax representation of the node.
	String() string
}

// Statement is implemented by all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: an ordered list of function declarations.
type Program struct {
	Functions []*Function
}

func (p *Program) Pos() token.Position {
	if len(p.Functions) > 0 {
		return p.Functions[0].Pos()
	}
	return token.Position{}
}

func (p *Program) String() string {
	var out strings.Builder
	for i, fn := range p.Functions {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(fn.String())
	}
	return out.String()
}

// Function is a top level function declaration.
type Function struct {
	Token      token.Token // the "function" token
	Name       *Ident
	Parameters []*Ident
	Body       []Statement
}

func (f *Function) Pos() token.Position { return f.Token.StartPosition }

func (f *Function) String() string {
	var out strings.Builder
	out.WriteString("function ")
	out.WriteString(f.Name.String())
	out.WriteString("(")
	for i, p := range f.Parameters {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString(") ")
	writeBlock(&out, f.Body)
	out.WriteString(" end")
	return out.String()
}

func writeBlock(out *strings.Builder, stmts []Statement) {
	for i, s := range stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
}

// Assign is an assignment statement. Target is an *Ident for plain
// assignments or an *Index for index stores. The compiler rejects any
// other target.
type Assign struct {
	Token  token.Token // the "=" token
	Target Expression
	Value  Expression
}

func (a *Assign) statementNode()      {}
func (a *Assign) Pos() token.Position { return a.Target.Pos() }
func (a *Assign) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// If is a conditional statement. An elseif chain parses as a nested If in
// the Else block.
type If struct {
	Token       token.Token // the "if" token
	Condition   Expression
	Consequence []Statement
	Alternative []Statement
}

func (i *If) statementNode()      {}
func (i *If) Pos() token.Position { return i.Token.StartPosition }
func (i *If) String() string {
	var out strings.Builder
	out.WriteString("if ")
	out.WriteString(i.Condition.String())
	out.WriteString(" then ")
	writeBlock(&out, i.Consequence)
	if i.Alternative != nil {
		out.WriteString(" else ")
		writeBlock(&out, i.Alternative)
	}
	out.WriteString(" end")
	return out.String()
}

// While is a while loop statement.
type While struct {
	Token     token.Token // the "while" token
	Condition Expression
	Body      []Statement
}

func (w *While) statementNode()      {}
func (w *While) Pos() token.Position { return w.Token.StartPosition }
func (w *While) String() string {
	var out strings.Builder
	out.WriteString("while ")
	out.WriteString(w.Condition.String())
	out.WriteString(" do ")
	writeBlock(&out, w.Body)
	out.WriteString(" end")
	return out.String()
}

// Return is a return statement with an optional value.
type Return struct {
	Token token.Token // the "return" token
	Value Expression  // may be nil
}

func (r *Return) statementNode()      {}
func (r *Return) Pos() token.Position { return r.Token.StartPosition }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// ExprStatement is an expression evaluated for its side effects, with the
// result discarded.
type ExprStatement struct {
	Value Expression
}

func (e *ExprStatement) statementNode()      {}
func (e *ExprStatement) Pos() token.Position { return e.Value.Pos() }
func (e *ExprStatement) String() string      { return e.Value.String() }

// Ident is an identifier expression.
type Ident struct {
	Token token.Token
}

func (i *Ident) expressionNode()     {}
func (i *Ident) Pos() token.Position { return i.Token.StartPosition }
func (i *Ident) String() string      { return i.Token.Literal }

// Name returns the identifier text.
func (i *Ident) Name() string { return i.Token.Literal }

// Number is a numeric literal.
type Number struct {
	Token token.Token
	Value float64
}

func (n *Number) expressionNode()     {}
func (n *Number) Pos() token.Position { return n.Token.StartPosition }
func (n *Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// String_ is a string literal.
type String_ struct {
	Token token.Token
	Value string
}

func (s *String_) expressionNode()     {}
func (s *String_) Pos() token.Position { return s.Token.StartPosition }
func (s *String_) String() string      { return strconv.Quote(s.Value) }

// Bool is a boolean literal.
type Bool struct {
	Token token.Token
	Value bool
}

func (b *Bool) expressionNode()     {}
func (b *Bool) Pos() token.Position { return b.Token.StartPosition }
func (b *Bool) String() string      { return b.Token.Literal }

// Nil is the nil literal.
type Nil struct {
	Token token.Token
}

func (n *Nil) expressionNode()     {}
func (n *Nil) Pos() token.Position { return n.Token.StartPosition }
func (n *Nil) String() string      { return "nil" }

// Prefix is a unary operator expression ("-" or "not").
type Prefix struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (p *Prefix) expressionNode()     {}
func (p *Prefix) Pos() token.Position { return p.Token.StartPosition }
func (p *Prefix) String() string {
	if p.Operator == "not" {
		return "(not " + p.Right.String() + ")"
	}
	return "(" + p.Operator + p.Right.String() + ")"
}

// Infix is a binary operator expression.
type Infix struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (i *Infix) expressionNode()     {}
func (i *Infix) Pos() token.Position { return i.Left.Pos() }
func (i *Infix) String() string {
	return "(" + i.Left.String() + " " + i.Operator + " " + i.Right.String() + ")"
}

// Call is a call of a top level function by name.
type Call struct {
	Token     token.Token // the "(" token
	Name      *Ident
	Arguments []Expression
}

func (c *Call) expressionNode()     {}
func (c *Call) Pos() token.Position { return c.Name.Pos() }
func (c *Call) String() string {
	var out strings.Builder
	out.WriteString(c.Name.String())
	out.WriteString("(")
	for i, a := range c.Arguments {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(a.String())
	}
	out.WriteString(")")
	return out.String()
}

// Index is an index access expression.
type Index struct {
	Token token.Token // the "[" token
	Left  Expression
	Index Expression
}

func (i *Index) expressionNode()     {}
func (i *Index) Pos() token.Position { return i.Left.Pos() }
func (i *Index) String() string {
	return i.Left.String() + "[" + i.Index.String() + "]"
}
