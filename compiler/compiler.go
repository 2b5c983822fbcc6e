// Package compiler lowers lualite syntax trees to register machine bytecode.
//
// Compilation runs in two passes. The first pass collects every top level
// declaration into the program-wide function table so that calls can
// reference callees by table index and be arity-checked, regardless of
// declaration order. The second pass lowers each function body.
//
// Register allocation is per function: register 0 is the return slot,
// registers 1..n hold the parameters, named locals get dedicated registers
// for the function's lifetime, and temporaries come from a stack-discipline
// counter that shrinks as subexpression values are consumed. Compilation is
// deterministic: the same source always yields the same bytecode.
package compiler

import (
	"github.com/deepnoodle-ai/lualite/ast"
	"github.com/deepnoodle-ai/lualite/bytecode"
)

type functionInfo struct {
	index int
	arity int
}

// Compiler compiles one program. It holds the function table shared by all
// functions in the compilation unit.
type Compiler struct {
	table map[string]functionInfo
}

// Compile lowers the given program to bytecode. Unknown callee names and
// arity errors in script-level calls are reported here rather than at
// execution time. The parser guarantees unique function names.
func Compile(program *ast.Program) (*bytecode.Program, error) {
	c := &Compiler{table: make(map[string]functionInfo, len(program.Functions))}
	c.collectFunctions(program)
	functions := make([]*bytecode.Function, 0, len(program.Functions))
	for _, decl := range program.Functions {
		fn, err := newFunctionCompiler(c, decl).compile()
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
	}
	compiled := bytecode.NewProgram(functions)
	if err := compiled.Validate(); err != nil {
		return nil, err
	}
	return compiled, nil
}

func (c *Compiler) collectFunctions(program *ast.Program) {
	for i, decl := range program.Functions {
		c.table[decl.Name.Name()] = functionInfo{
			index: i,
			arity: len(decl.Parameters),
		}
	}
}
