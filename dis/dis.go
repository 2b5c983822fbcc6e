// Package dis supports analysis of lualite bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and the
// instruction representation from the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/internal/table"
	"github.com/deepnoodle-ai/lualite/op"
	"github.com/deepnoodle-ai/wonton/color"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   string
	Annotation string
}

// Disassemble returns a parsed representation of the given function's
// bytecode. The program is needed to annotate call instructions with the
// callee's name; it may be nil, in which case calls are unannotated.
func Disassemble(program *bytecode.Program, fn *bytecode.Function) []Instruction {
	instructions := make([]Instruction, 0, fn.InstructionCount())
	for ip := 0; ip < fn.InstructionCount(); ip++ {
		instr := fn.InstructionAt(ip)
		info := op.GetInfo(instr.Op)
		instructions = append(instructions, Instruction{
			Offset:     ip,
			Name:       info.Name,
			Opcode:     instr.Op,
			Operands:   operandText(instr, info),
			Annotation: annotate(program, fn, instr),
		})
	}
	return instructions
}

// operandText is the instruction's disassembly text without the leading
// opcode name, e.g. "R1 = #5" for "mov R1 = #5".
func operandText(instr bytecode.Instruction, info op.Info) string {
	return strings.TrimSpace(strings.TrimPrefix(instr.String(), info.Name))
}

// annotate explains table references: the value behind a constant operand
// or the name behind a function key.
func annotate(program *bytecode.Program, fn *bytecode.Function,
	instr bytecode.Instruction) string {
	var notes []string
	for _, operand := range instr.Operands() {
		switch operand.Kind {
		case bytecode.OperandConstant:
			notes = append(notes, fmt.Sprintf("%s = %s",
				operand, fn.ConstantAt(operand.Value).Inspect()))
		case bytecode.OperandFunction:
			if program != nil {
				notes = append(notes, fmt.Sprintf("%s = %s",
					operand, program.FunctionAt(operand.Value).Name()))
			}
		}
	}
	return strings.Join(notes, ", ")
}

func bold(s string) string {
	if !color.Enabled {
		return s
	}
	return color.ApplyBold(s)
}

// Print writes a table listing of the given instructions.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		annotation := instr.Annotation
		if annotation != "" {
			annotation = color.BrightCyan.Apply(annotation)
		}
		lines = append(lines, []string{
			fmt.Sprintf("%d", instr.Offset),
			bold(instr.Name),
			instr.Operands,
			annotation,
		})
	}
	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintFunction writes a header describing the function (name, parameters,
// register count, constants) followed by its instruction listing.
func PrintFunction(program *bytecode.Program, fn *bytecode.Function, writer io.Writer) {
	fmt.Fprintf(writer, "function %s(%s)  registers=%d\n",
		bold(fn.Name()), strings.Join(fn.Parameters(), ", "), fn.RegisterCount())
	for i := 0; i < fn.ConstantCount(); i++ {
		fmt.Fprintf(writer, "  &%d = %s\n", i, fn.ConstantAt(i).Inspect())
	}
	Print(Disassemble(program, fn), writer)
}

// PrintProgram writes the listing of every function in the program, in
// function table order.
func PrintProgram(program *bytecode.Program, writer io.Writer) {
	for i := 0; i < program.FunctionCount(); i++ {
		if i > 0 {
			fmt.Fprintln(writer)
		}
		PrintFunction(program, program.FunctionAt(i), writer)
	}
}

// Text returns the plain disassembly text of a function, one instruction
// per line, without colors or table formatting. Useful for golden tests and
// determinism checks.
func Text(fn *bytecode.Function) string {
	var sb strings.Builder
	for ip := 0; ip < fn.InstructionCount(); ip++ {
		fmt.Fprintf(&sb, "%d: %s\n", ip, fn.InstructionAt(ip))
	}
	return sb.String()
}
