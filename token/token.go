// Package token defines the tokens produced by the lualite lexer.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Line   int // line number, starting at 0
	Column int // column number, starting at 0 (character count)
	Char   int // rune offset from the start of the input
	File   string
}

// String returns a human friendly line:column representation, 1-based.
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line+1, p.Column+1)
	}
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// LineNumber returns the 1-based line number of the position.
func (p Position) LineNumber() int { return p.Line + 1 }

// ColumnNumber returns the 1-based column number of the position.
func (p Position) ColumnNumber() int { return p.Column + 1 }

// Token is a token produced by the lexer.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types.
const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	IDENT  = "IDENT"
	NUMBER = "NUMBER"
	STRING = "STRING"

	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	CARET    = "^"

	LT     = "<"
	GT     = ">"
	LT_EQ  = "<="
	GT_EQ  = ">="
	EQ     = "=="
	NOT_EQ = "!="

	COMMA    = ","
	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"

	FUNCTION = "FUNCTION"
	END      = "END"
	IF       = "IF"
	THEN     = "THEN"
	ELSEIF   = "ELSEIF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	DO       = "DO"
	RETURN   = "RETURN"
	AND      = "AND"
	OR       = "OR"
	NOT      = "NOT"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	NIL      = "NIL"
)

var keywords = map[string]Type{
	"function": FUNCTION,
	"end":      END,
	"if":       IF,
	"then":     THEN,
	"elseif":   ELSEIF,
	"else":     ELSE,
	"while":    WHILE,
	"do":       DO,
	"return":   RETURN,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
}

// LookupIdentifier returns the token type for the given identifier, which is
// either a keyword type or IDENT.
func LookupIdentifier(identifier string) Type {
	if tokenType, ok := keywords[identifier]; ok {
		return tokenType
	}
	return IDENT
}
