// Package op defines the opcodes executed by the lualite virtual machine.
package op

// Code is an integer opcode.
type Code uint8

// Opcodes. An instruction is an opcode plus up to three typed operands; the
// operand count listed here is the number of operands the instruction
// carries in its encoded form.
const (
	Nop Code = iota
	Move
	Add
	Sub
	Mul
	Div
	Rem
	Pow
	Neg
	Not
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Equal
	NotEqual
	GetIndex
	SetIndex
	Jump
	JumpIfFalse
	JumpIfTrue
	Call
	Return
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	// Symbol is the operator symbol for arithmetic and comparison opcodes,
	// used by disassembly; empty for other opcodes.
	Symbol string
}

var infos [64]Info

func init() {
	type opInfo struct {
		op     Code
		name   string
		count  int
		symbol string
	}
	ops := []opInfo{
		{Nop, "nop", 0, ""},
		{Move, "mov", 2, ""},
		{Add, "add", 3, "+"},
		{Sub, "sub", 3, "-"},
		{Mul, "mul", 3, "*"},
		{Div, "div", 3, "/"},
		{Rem, "rem", 3, "%"},
		{Pow, "pow", 3, "^"},
		{Neg, "neg", 2, ""},
		{Not, "not", 2, ""},
		{LessThan, "lt", 3, "<"},
		{LessThanOrEqual, "le", 3, "<="},
		{GreaterThan, "gt", 3, ">"},
		{GreaterThanOrEqual, "ge", 3, ">="},
		{Equal, "eq", 3, "=="},
		{NotEqual, "ne", 3, "!="},
		{GetIndex, "idx", 3, ""},
		{SetIndex, "idx", 3, ""},
		{Jump, "jmp", 1, ""},
		{JumpIfFalse, "jmp", 2, ""},
		{JumpIfTrue, "jmp", 2, ""},
		{Call, "call", 3, ""},
		{Return, "ret", 0, ""},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: o.count,
			Symbol:       o.symbol,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(c Code) Info {
	return infos[c]
}

// IsArithmetic returns true for the binary arithmetic opcodes.
func IsArithmetic(c Code) bool {
	return c >= Add && c <= Pow
}

// IsComparison returns true for the binary comparison opcodes.
func IsComparison(c Code) bool {
	return c >= LessThan && c <= NotEqual
}

// IsJump returns true for the jump opcodes.
func IsJump(c Code) bool {
	return c == Jump || c == JumpIfFalse || c == JumpIfTrue
}
