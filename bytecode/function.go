package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/lualite/object"
)

// MaxRegisters is the largest register file a single function may use.
const MaxRegisters = 256

// Function is the compiled form of one lualite function: its instructions,
// constant table, and register file size. Functions are immutable after
// compilation.
type Function struct {
	name          string
	parameters    []string
	registerCount int
	instructions  []Instruction
	constants     []object.Object
}

// NewFunction builds a compiled function. The caller transfers ownership of
// the slices.
func NewFunction(name string, parameters []string, registerCount int,
	instructions []Instruction, constants []object.Object) *Function {
	return &Function{
		name:          name,
		parameters:    parameters,
		registerCount: registerCount,
		instructions:  instructions,
		constants:     constants,
	}
}

// Name returns the function's name.
func (f *Function) Name() string { return f.name }

// Parameters returns the parameter names in declaration order.
func (f *Function) Parameters() []string { return f.parameters }

// ParameterCount returns the function's arity.
func (f *Function) ParameterCount() int { return len(f.parameters) }

// RegisterCount returns the size of the register file a call to this
// function requires. Register 0 is the return slot and registers
// 1..ParameterCount hold the arguments.
func (f *Function) RegisterCount() int { return f.registerCount }

// InstructionCount returns the number of instructions.
func (f *Function) InstructionCount() int { return len(f.instructions) }

// InstructionAt returns the instruction at the given index.
func (f *Function) InstructionAt(index int) Instruction { return f.instructions[index] }

// ConstantCount returns the size of the constant table.
func (f *Function) ConstantCount() int { return len(f.constants) }

// ConstantAt returns the constant at the given index.
func (f *Function) ConstantAt(index int) object.Object { return f.constants[index] }

// Validate checks the static safety of the function's bytecode: every
// register operand must be within the register file, every jump target
// within the instruction sequence, and every constant index within the
// constant table. Function table indices are checked by Program.Validate.
func (f *Function) Validate() error {
	if f.registerCount < 1+len(f.parameters) {
		return fmt.Errorf("function %q: register count %d below parameter count",
			f.name, f.registerCount)
	}
	if f.registerCount > MaxRegisters {
		return fmt.Errorf("function %q: register count %d exceeds maximum %d",
			f.name, f.registerCount, MaxRegisters)
	}
	for ip, instr := range f.instructions {
		for _, operand := range instr.Operands() {
			if err := f.validateOperand(operand); err != nil {
				return fmt.Errorf("function %q: instruction %d (%s): %w",
					f.name, ip, instr, err)
			}
		}
	}
	return nil
}

func (f *Function) validateOperand(operand Operand) error {
	switch operand.Kind {
	case OperandRegister:
		if operand.Value < 0 || operand.Value >= f.registerCount {
			return fmt.Errorf("register %d out of range (have %d)",
				operand.Value, f.registerCount)
		}
	case OperandImmediate:
		if operand.Value < MinImmediate || operand.Value > MaxImmediate {
			return fmt.Errorf("immediate %d out of range", operand.Value)
		}
	case OperandConstant:
		if operand.Value < 0 || operand.Value >= len(f.constants) {
			return fmt.Errorf("constant %d out of range (have %d)",
				operand.Value, len(f.constants))
		}
	case OperandAddress:
		if operand.Value < 0 || operand.Value >= len(f.instructions) {
			return fmt.Errorf("jump target %d out of range (have %d)",
				operand.Value, len(f.instructions))
		}
	}
	return nil
}

// Program holds all compiled functions of one compilation unit. The function
// table is ordered: call instructions reference callees by index, resolved
// at compile time. Programs are immutable and safe for concurrent use.
type Program struct {
	functions []*Function
	index     map[string]int
}

// NewProgram builds a program from compiled functions. Function order
// defines the function table indices.
func NewProgram(functions []*Function) *Program {
	index := make(map[string]int, len(functions))
	for i, fn := range functions {
		index[fn.Name()] = i
	}
	return &Program{functions: functions, index: index}
}

// FunctionCount returns the number of functions in the table.
func (p *Program) FunctionCount() int { return len(p.functions) }

// FunctionAt returns the function with the given table index.
func (p *Program) FunctionAt(index int) *Function { return p.functions[index] }

// FunctionNamed returns the function with the given name, if present.
func (p *Program) FunctionNamed(name string) (*Function, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.functions[i], true
}

// IndexOf returns the function table index for the given name.
func (p *Program) IndexOf(name string) (int, bool) {
	i, ok := p.index[name]
	return i, ok
}

// FunctionNames returns the function names in table order.
func (p *Program) FunctionNames() []string {
	names := make([]string, 0, len(p.functions))
	for _, fn := range p.functions {
		names = append(names, fn.Name())
	}
	return names
}

// Validate checks every function plus the function table references that
// individual functions cannot check themselves.
func (p *Program) Validate() error {
	for _, fn := range p.functions {
		if err := fn.Validate(); err != nil {
			return err
		}
		for ip := 0; ip < fn.InstructionCount(); ip++ {
			instr := fn.InstructionAt(ip)
			for _, operand := range instr.Operands() {
				if operand.Kind != OperandFunction {
					continue
				}
				if operand.Value < 0 || operand.Value >= len(p.functions) {
					return fmt.Errorf("function %q: instruction %d (%s): function key %d out of range (have %d)",
						fn.Name(), ip, instr, operand.Value, len(p.functions))
				}
			}
		}
	}
	return nil
}
