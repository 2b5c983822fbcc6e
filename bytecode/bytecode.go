// Package bytecode defines the compiled representation of lualite programs:
// register machine instructions with typed operands, per-function constant
// tables, and the program-wide function table.
package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/lualite/op"
)

// OperandKind discriminates the typed operands an instruction may carry.
type OperandKind uint8

const (
	// OperandNone marks an unused operand slot.
	OperandNone OperandKind = iota

	// OperandRegister is a register index within the executing function's
	// register file.
	OperandRegister

	// OperandImmediate is a small integer (-128..127) encoded directly in
	// the instruction and materialized as a number value.
	OperandImmediate

	// OperandConstant is an index into the function's constant table.
	OperandConstant

	// OperandFunction is an index into the program's function table.
	OperandFunction

	// OperandAddress is an absolute instruction index used as a jump target.
	OperandAddress
)

// MinImmediate and MaxImmediate bound the values an immediate operand can
// encode; literals outside this range go through the constant table.
const (
	MinImmediate = -128
	MaxImmediate = 127
)

// Operand is a single typed instruction operand.
type Operand struct {
	Kind  OperandKind
	Value int
}

// Reg returns a register operand.
func Reg(index int) Operand { return Operand{Kind: OperandRegister, Value: index} }

// Imm returns an immediate operand.
func Imm(value int) Operand { return Operand{Kind: OperandImmediate, Value: value} }

// Const returns a constant table operand.
func Const(index int) Operand { return Operand{Kind: OperandConstant, Value: index} }

// Fn returns a function table operand.
func Fn(index int) Operand { return Operand{Kind: OperandFunction, Value: index} }

// Addr returns a jump target operand.
func Addr(target int) Operand { return Operand{Kind: OperandAddress, Value: target} }

// String renders the operand in disassembly syntax: RN for registers,
// #N for immediates, &N for constants, FN for function keys, and
// "ip N" for jump targets.
func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return fmt.Sprintf("R%d", o.Value)
	case OperandImmediate:
		return fmt.Sprintf("#%d", o.Value)
	case OperandConstant:
		return fmt.Sprintf("&%d", o.Value)
	case OperandFunction:
		return fmt.Sprintf("F%d", o.Value)
	case OperandAddress:
		return fmt.Sprintf("ip %d", o.Value)
	}
	return ""
}

// Instruction is one register machine instruction: an opcode and up to
// three typed operands. Unused slots have kind OperandNone.
type Instruction struct {
	Op op.Code
	A  Operand
	B  Operand
	C  Operand
}

// NewInstruction builds an instruction from an opcode and its operands.
func NewInstruction(code op.Code, operands ...Operand) Instruction {
	instr := Instruction{Op: code}
	if len(operands) > 0 {
		instr.A = operands[0]
	}
	if len(operands) > 1 {
		instr.B = operands[1]
	}
	if len(operands) > 2 {
		instr.C = operands[2]
	}
	return instr
}

// Operands returns the used operands in order.
func (i Instruction) Operands() []Operand {
	all := []Operand{i.A, i.B, i.C}
	var used []Operand
	for _, o := range all {
		if o.Kind != OperandNone {
			used = append(used, o)
		}
	}
	return used
}

// String renders the instruction in disassembly syntax, e.g. "mov R1 = #5",
// "add R0 = R1 + R2", "jmp ip 4 if !R2", "idx R3 = R1[R2]".
func (i Instruction) String() string {
	info := op.GetInfo(i.Op)
	switch {
	case i.Op == op.Nop || i.Op == op.Return:
		return info.Name
	case i.Op == op.Move || i.Op == op.Neg || i.Op == op.Not:
		return fmt.Sprintf("%s %s = %s", info.Name, i.A, i.B)
	case op.IsArithmetic(i.Op) || op.IsComparison(i.Op):
		return fmt.Sprintf("%s %s = %s %s %s", info.Name, i.A, i.B, info.Symbol, i.C)
	case i.Op == op.GetIndex:
		return fmt.Sprintf("%s %s = %s[%s]", info.Name, i.A, i.B, i.C)
	case i.Op == op.SetIndex:
		return fmt.Sprintf("%s %s[%s] = %s", info.Name, i.A, i.B, i.C)
	case i.Op == op.Jump:
		return fmt.Sprintf("%s %s", info.Name, i.A)
	case i.Op == op.JumpIfFalse:
		return fmt.Sprintf("%s %s if !%s", info.Name, i.A, i.B)
	case i.Op == op.JumpIfTrue:
		return fmt.Sprintf("%s %s if %s", info.Name, i.A, i.B)
	case i.Op == op.Call:
		return fmt.Sprintf("%s %s = %s(%s..)", info.Name, i.A, i.B, i.C)
	}
	return info.Name
}
