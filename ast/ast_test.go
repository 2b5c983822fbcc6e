package ast

import (
	"testing"

	"github.com/deepnoodle-ai/lualite/token"
	"github.com/deepnoodle-ai/wonton/assert"
)

func ident(name string) *Ident {
	return &Ident{Token: token.Token{Type: token.IDENT, Literal: name}}
}

func TestFunctionString(t *testing.T) {
	fn := &Function{
		Name:       ident("add"),
		Parameters: []*Ident{ident("a"), ident("b")},
		Body: []Statement{
			&Return{Value: &Infix{Operator: "+", Left: ident("a"), Right: ident("b")}},
		},
	}
	assert.Equal(t, fn.String(), "function add(a, b) return (a + b) end")
}

func TestNumberString(t *testing.T) {
	assert.Equal(t, (&Number{Value: 5}).String(), "5")
	assert.Equal(t, (&Number{Value: 2.5}).String(), "2.5")
}

func TestIfString(t *testing.T) {
	stmt := &If{
		Condition:   &Bool{Token: token.Token{Literal: "true"}, Value: true},
		Consequence: []Statement{&Return{Value: &Number{Value: 1}}},
		Alternative: []Statement{&Return{Value: &Number{Value: 2}}},
	}
	assert.Equal(t, stmt.String(), "if true then return 1 else return 2 end")
}

func TestIndexString(t *testing.T) {
	expr := &Index{Left: ident("a"), Index: &Number{Value: 0}}
	assert.Equal(t, expr.String(), "a[0]")
	assign := &Assign{Target: expr, Value: &Number{Value: 5}}
	assert.Equal(t, assign.String(), "a[0] = 5")
}
