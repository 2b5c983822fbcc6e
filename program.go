package lualite

import (
	"context"

	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/vm"
)

// Program is the compiled representation of lualite source code.
// It is immutable after creation and safe for concurrent use: every Call
// executes with fresh VM state, so multiple goroutines can call into the
// same Program simultaneously.
type Program struct {
	code      *bytecode.Program
	source    string
	filename  string
	vmOptions []vm.Option
}

// Call invokes the named function with the given arguments and returns its
// result. Arguments are arbitrary Go values converted via object.FromGoType;
// numeric types all become the script's number type. The argument count is
// checked against the function's arity before execution begins.
func (p *Program) Call(ctx context.Context, name string,
	args ...any) (object.Object, error) {
	objects, err := object.AsObjects(args)
	if err != nil {
		return nil, err
	}
	return vm.Run(ctx, p.code, name, objects, p.vmOptions...)
}

// Source returns the original source code that was compiled.
func (p *Program) Source() string {
	return p.source
}

// Filename returns the filename associated with this program, if any.
func (p *Program) Filename() string {
	return p.filename
}

// Bytecode returns the compiled bytecode, e.g. for disassembly.
func (p *Program) Bytecode() *bytecode.Program {
	return p.code
}

// FunctionNames returns the declared function names in declaration order.
func (p *Program) FunctionNames() []string {
	return p.code.FunctionNames()
}
