package token

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestLookupIdentifier(t *testing.T) {
	assert.Equal(t, LookupIdentifier("function"), Type(FUNCTION))
	assert.Equal(t, LookupIdentifier("while"), Type(WHILE))
	assert.Equal(t, LookupIdentifier("elseif"), Type(ELSEIF))
	assert.Equal(t, LookupIdentifier("nil"), Type(NIL))
	assert.Equal(t, LookupIdentifier("gcd"), Type(IDENT))
	assert.Equal(t, LookupIdentifier("x"), Type(IDENT))
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 2, Column: 4}
	assert.Equal(t, p.String(), "3:5")
	assert.Equal(t, p.LineNumber(), 3)
	assert.Equal(t, p.ColumnNumber(), 5)

	withFile := Position{Line: 0, Column: 0, File: "main.lua"}
	assert.Equal(t, withFile.String(), "main.lua:1:1")
}
