package vm

import (
	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/object"
)

// frame is one activation record: the executing function, its instruction
// pointer, a register file of its own, and the caller register that receives
// the return value.
type frame struct {
	fn        *bytecode.Function
	ip        int
	registers []object.Object
	returnReg int
}

func newFrame(fn *bytecode.Function, returnReg int) frame {
	registers := make([]object.Object, fn.RegisterCount())
	for i := range registers {
		registers[i] = object.Nil
	}
	return frame{fn: fn, registers: registers, returnReg: returnReg}
}
