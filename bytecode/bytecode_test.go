package bytecode

import (
	"testing"

	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/op"
	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/stretchr/testify/require"
)

func TestOperandString(t *testing.T) {
	assert.Equal(t, Reg(3).String(), "R3")
	assert.Equal(t, Imm(5).String(), "#5")
	assert.Equal(t, Imm(-1).String(), "#-1")
	assert.Equal(t, Const(2).String(), "&2")
	assert.Equal(t, Fn(0).String(), "F0")
	assert.Equal(t, Addr(7).String(), "ip 7")
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		instr    Instruction
		expected string
	}{
		{NewInstruction(op.Nop), "nop"},
		{NewInstruction(op.Return), "ret"},
		{NewInstruction(op.Move, Reg(1), Imm(5)), "mov R1 = #5"},
		{NewInstruction(op.Move, Reg(2), Const(0)), "mov R2 = &0"},
		{NewInstruction(op.Add, Reg(0), Reg(1), Reg(2)), "add R0 = R1 + R2"},
		{NewInstruction(op.Sub, Reg(3), Reg(1), Imm(1)), "sub R3 = R1 - #1"},
		{NewInstruction(op.LessThan, Reg(2), Reg(1), Imm(10)), "lt R2 = R1 < #10"},
		{NewInstruction(op.GetIndex, Reg(3), Reg(1), Reg(2)), "idx R3 = R1[R2]"},
		{NewInstruction(op.SetIndex, Reg(1), Reg(2), Reg(3)), "idx R1[R2] = R3"},
		{NewInstruction(op.Jump, Addr(4)), "jmp ip 4"},
		{NewInstruction(op.JumpIfFalse, Addr(4), Reg(2)), "jmp ip 4 if !R2"},
		{NewInstruction(op.JumpIfTrue, Addr(9), Reg(2)), "jmp ip 9 if R2"},
		{NewInstruction(op.Call, Reg(4), Fn(0), Reg(5)), "call R4 = F0(R5..)"},
		{NewInstruction(op.Neg, Reg(1), Reg(2)), "neg R1 = R2"},
		{NewInstruction(op.Not, Reg(1), Reg(2)), "not R1 = R2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.instr.String(), tt.expected)
	}
}

func TestFunctionValidate(t *testing.T) {
	fn := NewFunction("f", []string{"a"}, 3, []Instruction{
		NewInstruction(op.Nop),
		NewInstruction(op.Move, Reg(0), Reg(1)),
		NewInstruction(op.Return),
	}, nil)
	require.NoError(t, fn.Validate())
}

func TestValidateRejectsBadRegister(t *testing.T) {
	fn := NewFunction("f", nil, 2, []Instruction{
		NewInstruction(op.Move, Reg(5), Imm(1)),
		NewInstruction(op.Return),
	}, nil)
	err := fn.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "register 5 out of range")
}

func TestValidateRejectsBadJumpTarget(t *testing.T) {
	fn := NewFunction("f", nil, 1, []Instruction{
		NewInstruction(op.Jump, Addr(10)),
		NewInstruction(op.Return),
	}, nil)
	err := fn.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "jump target 10 out of range")
}

func TestValidateRejectsBadConstant(t *testing.T) {
	fn := NewFunction("f", nil, 1, []Instruction{
		NewInstruction(op.Move, Reg(0), Const(0)),
		NewInstruction(op.Return),
	}, nil)
	err := fn.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "constant 0 out of range")
}

func TestValidateRejectsOversizedRegisterFile(t *testing.T) {
	fn := NewFunction("f", nil, MaxRegisters+1, []Instruction{
		NewInstruction(op.Return),
	}, nil)
	require.Error(t, fn.Validate())
}

func TestProgramValidateChecksFunctionKeys(t *testing.T) {
	fn := NewFunction("f", nil, 2, []Instruction{
		NewInstruction(op.Call, Reg(0), Fn(3), Reg(1)),
		NewInstruction(op.Return),
	}, nil)
	program := NewProgram([]*Function{fn})
	err := program.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "function key 3 out of range")
}

func TestProgramLookup(t *testing.T) {
	a := NewFunction("a", nil, 1, []Instruction{NewInstruction(op.Return)}, nil)
	b := NewFunction("b", []string{"x"}, 2, []Instruction{NewInstruction(op.Return)}, nil)
	program := NewProgram([]*Function{a, b})

	assert.Equal(t, program.FunctionCount(), 2)
	assert.Equal(t, program.FunctionNames(), []string{"a", "b"})

	fn, ok := program.FunctionNamed("b")
	assert.True(t, ok)
	assert.Equal(t, fn.ParameterCount(), 1)

	index, ok := program.IndexOf("a")
	assert.True(t, ok)
	assert.Equal(t, index, 0)

	_, ok = program.FunctionNamed("missing")
	assert.False(t, ok)
}

func TestConstantAccess(t *testing.T) {
	fn := NewFunction("f", nil, 1,
		[]Instruction{NewInstruction(op.Return)},
		[]object.Object{object.Nil, object.NewNumber(1000)})
	assert.Equal(t, fn.ConstantCount(), 2)
	assert.Equal(t, fn.ConstantAt(1).Inspect(), "1000")
}
