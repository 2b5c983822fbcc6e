package parser

import (
	"fmt"

	"github.com/deepnoodle-ai/lualite/token"
)

// Error is a parse error at a specific position. Expected and Found are set
// when the parser knows exactly which token it wanted.
type Error struct {
	Position token.Position
	Message  string
	Expected string
	Found    string
}

func (e *Error) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("parse error: expected %s, found %s (%s)",
			e.Expected, e.Found, e.Position)
	}
	return fmt.Sprintf("parse error: %s (%s)", e.Message, e.Position)
}

func newError(pos token.Position, format string, args ...any) *Error {
	return &Error{Position: pos, Message: fmt.Sprintf(format, args...)}
}

func newExpectedError(pos token.Position, expected string, found token.Token) *Error {
	foundDesc := string(found.Type)
	switch found.Type {
	case token.IDENT, token.NUMBER:
		foundDesc = fmt.Sprintf("%s %q", found.Type, found.Literal)
	case token.EOF:
		foundDesc = "end of input"
	}
	return &Error{
		Position: pos,
		Expected: expected,
		Found:    foundDesc,
	}
}
