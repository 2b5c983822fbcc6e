// Package lexer transforms lualite source code into a stream of tokens.
package lexer

import (
	"fmt"

	"github.com/deepnoodle-ai/lualite/token"
)

// Error is a lexer error with the position at which it occurred.
type Error struct {
	Position token.Position
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error: %s (%s)", e.Message, e.Position)
}

// Lexer scans an input string and produces tokens one at a time.
type Lexer struct {
	input    []rune
	position int // index of the current rune
	ch       rune
	line     int
	column   int
	file     string
}

// New returns a Lexer for the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), position: -1, column: -1}
	l.readChar()
	return l
}

// SetFilename associates a filename with positions produced by this lexer.
func (l *Lexer) SetFilename(name string) {
	l.file = name
}

func (l *Lexer) readChar() {
	l.position++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	if l.position >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.position]
	}
}

func (l *Lexer) peekChar() rune {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.column,
		Char:   l.position,
		File:   l.file,
	}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) error {
	return &Error{Position: pos, Message: fmt.Sprintf(format, args...)}
}

// Next returns the next token in the input. At the end of the input, tokens
// with type token.EOF are returned indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.pos()
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	case '=':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.EQ, start), nil
		}
		return l.oneCharToken(token.ASSIGN, start), nil
	case '!':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.NOT_EQ, start), nil
		}
		l.readChar()
		return token.Token{}, l.errorf(start, "unexpected character %q", '!')
	case '<':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.LT_EQ, start), nil
		}
		return l.oneCharToken(token.LT, start), nil
	case '>':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.GT_EQ, start), nil
		}
		return l.oneCharToken(token.GT, start), nil
	case '+':
		return l.oneCharToken(token.PLUS, start), nil
	case '-':
		return l.oneCharToken(token.MINUS, start), nil
	case '*':
		return l.oneCharToken(token.ASTERISK, start), nil
	case '/':
		return l.oneCharToken(token.SLASH, start), nil
	case '%':
		return l.oneCharToken(token.PERCENT, start), nil
	case '^':
		return l.oneCharToken(token.CARET, start), nil
	case ',':
		return l.oneCharToken(token.COMMA, start), nil
	case '(':
		return l.oneCharToken(token.LPAREN, start), nil
	case ')':
		return l.oneCharToken(token.RPAREN, start), nil
	case '[':
		return l.oneCharToken(token.LBRACKET, start), nil
	case ']':
		return l.oneCharToken(token.RBRACKET, start), nil
	case '"', '\'':
		return l.readString(start)
	}
	if isLetter(l.ch) {
		return l.readIdentifier(start), nil
	}
	if isDigit(l.ch) {
		return l.readNumber(start)
	}
	ch := l.ch
	l.readChar()
	return token.Token{}, l.errorf(start, "unexpected character %q", ch)
}

// Tokenize consumes the remaining input and returns all tokens, excluding
// the trailing EOF token.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) oneCharToken(typ token.Type, start token.Position) token.Token {
	tok := token.Token{
		Type:          typ,
		Literal:       string(l.ch),
		StartPosition: start,
		EndPosition:   l.pos(),
	}
	l.readChar()
	return tok
}

func (l *Lexer) twoCharToken(typ token.Type, start token.Position) token.Token {
	first := l.ch
	l.readChar()
	tok := token.Token{
		Type:          typ,
		Literal:       string(first) + string(l.ch),
		StartPosition: start,
		EndPosition:   l.pos(),
	}
	l.readChar()
	return tok
}

func (l *Lexer) readIdentifier(start token.Position) token.Token {
	begin := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	literal := string(l.input[begin:l.position])
	end := l.pos()
	end.Column--
	end.Char--
	return token.Token{
		Type:          token.LookupIdentifier(literal),
		Literal:       literal,
		StartPosition: start,
		EndPosition:   end,
	}
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	begin := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if isLetter(l.ch) {
		return token.Token{}, l.errorf(l.pos(), "invalid character in number literal %q", l.ch)
	}
	literal := string(l.input[begin:l.position])
	end := l.pos()
	end.Column--
	end.Char--
	return token.Token{
		Type:          token.NUMBER,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   end,
	}, nil
}

func (l *Lexer) readString(start token.Position) (token.Token, error) {
	quote := l.ch
	l.readChar()
	var out []rune
	for l.ch != quote {
		switch l.ch {
		case 0, '\n':
			return token.Token{}, l.errorf(start, "unterminated string literal")
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\', '"', '\'':
				out = append(out, l.ch)
			default:
				return token.Token{}, l.errorf(l.pos(), "invalid escape sequence \\%c", l.ch)
			}
			l.readChar()
		default:
			out = append(out, l.ch)
			l.readChar()
		}
	}
	end := l.pos()
	l.readChar()
	return token.Token{
		Type:          token.STRING,
		Literal:       string(out),
		StartPosition: start,
		EndPosition:   end,
	}, nil
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
