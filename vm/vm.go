// Package vm executes compiled lualite bytecode.
//
// The machine is register based. Every call activates a fresh register file:
// register 0 is the return slot, registers 1..n hold the arguments, and the
// rest are the function's locals and temporaries, all initialized to nil.
// A VirtualMachine holds no state between calls; the host may create one per
// call or reuse one sequentially.
package vm

import (
	"context"
	"math"
	"strings"

	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/op"
)

// DefaultMaxCallDepth is the call depth limit used unless WithMaxCallDepth
// overrides it.
const DefaultMaxCallDepth = 1024

// VirtualMachine executes functions of one compiled program.
type VirtualMachine struct {
	program      *bytecode.Program
	maxCallDepth int
	observer     Observer
}

// New returns a VirtualMachine for the given program.
func New(program *bytecode.Program, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		program:      program,
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Run compiles nothing and holds nothing: it creates a VirtualMachine for
// the program and invokes the named function once.
func Run(ctx context.Context, program *bytecode.Program, name string,
	args []object.Object, options ...Option) (object.Object, error) {
	return New(program, options...).Call(ctx, name, args...)
}

// Call invokes the named function with the given arguments and returns its
// result. The argument count is checked against the function's arity before
// the first instruction executes.
func (vm *VirtualMachine) Call(ctx context.Context, name string,
	args ...object.Object) (object.Object, error) {

	fn, ok := vm.program.FunctionNamed(name)
	if !ok {
		return nil, newError(FunctionNotFound, "function %q is not defined", name)
	}
	if len(args) != fn.ParameterCount() {
		return nil, newError(ArityMismatch,
			"function %q takes %d arguments (%d given)",
			name, fn.ParameterCount(), len(args))
	}
	entry := newFrame(fn, 0)
	copy(entry.registers[1:], args)
	return vm.run(ctx, entry)
}

func (vm *VirtualMachine) run(ctx context.Context, entry frame) (object.Object, error) {
	frames := make([]frame, 0, 8)
	frames = append(frames, entry)
	for {
		f := &frames[len(frames)-1]
		instr := f.fn.InstructionAt(f.ip)
		if vm.observer != nil {
			vm.observer.OnStep(StepEvent{
				Function:    f.fn.Name(),
				IP:          f.ip,
				Instruction: instr,
				FrameDepth:  len(frames),
			})
		}
		switch instr.Op {

		case op.Nop:

		case op.Move:
			value, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			f.registers[instr.A.Value] = value

		case op.Add, op.Sub, op.Mul, op.Div, op.Rem, op.Pow:
			left, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			right, err := vm.resolve(f, instr.C)
			if err != nil {
				return nil, err
			}
			result, err := arithmetic(instr.Op, left, right)
			if err != nil {
				return nil, err
			}
			f.registers[instr.A.Value] = result

		case op.Neg:
			value, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			num, ok := value.(*object.Number)
			if !ok {
				return nil, newError(TypeMismatch,
					"cannot negate %s", value.Type())
			}
			f.registers[instr.A.Value] = object.NewNumber(-num.Value())

		case op.Not:
			value, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			f.registers[instr.A.Value] = object.FromBool(!value.IsTruthy())

		case op.LessThan, op.LessThanOrEqual, op.GreaterThan,
			op.GreaterThanOrEqual, op.Equal, op.NotEqual:
			left, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			right, err := vm.resolve(f, instr.C)
			if err != nil {
				return nil, err
			}
			result, err := compare(instr.Op, left, right)
			if err != nil {
				return nil, err
			}
			f.registers[instr.A.Value] = result

		case op.GetIndex:
			base, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			index, err := vm.resolve(f, instr.C)
			if err != nil {
				return nil, err
			}
			value, err := getIndex(base, index)
			if err != nil {
				return nil, err
			}
			f.registers[instr.A.Value] = value

		case op.SetIndex:
			base, err := vm.resolve(f, instr.A)
			if err != nil {
				return nil, err
			}
			index, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			value, err := vm.resolve(f, instr.C)
			if err != nil {
				return nil, err
			}
			if err := setIndex(base, index, value); err != nil {
				return nil, err
			}

		case op.Jump:
			f.ip = instr.A.Value
			continue

		case op.JumpIfFalse:
			value, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			if !value.IsTruthy() {
				f.ip = instr.A.Value
				continue
			}

		case op.JumpIfTrue:
			value, err := vm.resolve(f, instr.B)
			if err != nil {
				return nil, err
			}
			if value.IsTruthy() {
				f.ip = instr.A.Value
				continue
			}

		case op.Call:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if len(frames) >= vm.maxCallDepth {
				return nil, newError(StackOverflow,
					"call depth limit of %d exceeded", vm.maxCallDepth)
			}
			callee := vm.program.FunctionAt(instr.B.Value)
			next := newFrame(callee, instr.A.Value)
			argStart := instr.C.Value
			copy(next.registers[1:1+callee.ParameterCount()],
				f.registers[argStart:argStart+callee.ParameterCount()])
			if vm.observer != nil {
				vm.observer.OnCall(CallEvent{
					Function:   callee.Name(),
					ArgCount:   callee.ParameterCount(),
					FrameDepth: len(frames) + 1,
				})
			}
			// The instruction pointer must advance past the call before the
			// new frame is pushed: it is the return address.
			f.ip++
			frames = append(frames, next)
			continue

		case op.Return:
			value := f.registers[0]
			if vm.observer != nil {
				vm.observer.OnReturn(ReturnEvent{
					Function:   f.fn.Name(),
					Value:      value,
					FrameDepth: len(frames) - 1,
				})
			}
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				return value, nil
			}
			caller := &frames[len(frames)-1]
			caller.registers[f.returnReg] = value
			continue

		default:
			return nil, newError(TypeMismatch,
				"invalid opcode %d at ip %d", instr.Op, f.ip)
		}
		f.ip++
	}
}

// resolve materializes a source operand: a register read, an immediate
// number, or a constant table entry.
func (vm *VirtualMachine) resolve(f *frame, operand bytecode.Operand) (object.Object, error) {
	switch operand.Kind {
	case bytecode.OperandRegister:
		return f.registers[operand.Value], nil
	case bytecode.OperandImmediate:
		return object.NewNumber(float64(operand.Value)), nil
	case bytecode.OperandConstant:
		return f.fn.ConstantAt(operand.Value), nil
	}
	return nil, newError(TypeMismatch, "invalid operand kind %d", operand.Kind)
}

func arithmetic(code op.Code, left, right object.Object) (object.Object, error) {
	x, ok := left.(*object.Number)
	y, ok2 := right.(*object.Number)
	if !ok || !ok2 {
		return nil, newError(TypeMismatch, "cannot apply %q to %s and %s",
			op.GetInfo(code).Symbol, left.Type(), right.Type())
	}
	a, b := x.Value(), y.Value()
	switch code {
	case op.Add:
		return object.NewNumber(a + b), nil
	case op.Sub:
		return object.NewNumber(a - b), nil
	case op.Mul:
		return object.NewNumber(a * b), nil
	case op.Div:
		// IEEE-754: division by zero yields an infinity or NaN.
		return object.NewNumber(a / b), nil
	case op.Rem:
		return object.NewNumber(math.Mod(a, b)), nil
	case op.Pow:
		return object.NewNumber(math.Pow(a, b)), nil
	}
	return nil, newError(TypeMismatch, "invalid arithmetic opcode %d", code)
}

func compare(code op.Code, left, right object.Object) (object.Object, error) {
	// Equality across mismatched types is simply unequal, never an error.
	switch code {
	case op.Equal:
		return object.FromBool(left.Equals(right)), nil
	case op.NotEqual:
		return object.FromBool(!left.Equals(right)), nil
	}
	// Ordering requires two numbers or two strings.
	if x, ok := left.(*object.Number); ok {
		if y, ok := right.(*object.Number); ok {
			return order(code, x.Value(), y.Value()), nil
		}
	}
	if x, ok := left.(*object.String); ok {
		if y, ok := right.(*object.String); ok {
			cmp := strings.Compare(x.Value(), y.Value())
			return order(code, float64(cmp), 0), nil
		}
	}
	return nil, newError(TypeMismatch, "cannot order %s against %s",
		left.Type(), right.Type())
}

// order evaluates the comparison directly on the operands, so every ordering
// against NaN is false.
func order(code op.Code, a, b float64) *object.Bool {
	switch code {
	case op.LessThan:
		return object.FromBool(a < b)
	case op.LessThanOrEqual:
		return object.FromBool(a <= b)
	case op.GreaterThan:
		return object.FromBool(a > b)
	case op.GreaterThanOrEqual:
		return object.FromBool(a >= b)
	}
	return object.False
}

func getIndex(base, index object.Object) (object.Object, error) {
	list, ok := base.(*object.List)
	if !ok {
		return nil, newError(TypeMismatch, "cannot index %s", base.Type())
	}
	num, ok := index.(*object.Number)
	if !ok {
		return nil, newError(TypeMismatch,
			"list index must be a number (got %s)", index.Type())
	}
	// The index truncates toward zero.
	i := int(num.Value())
	value, ok := list.Get(i)
	if !ok {
		return nil, newError(IndexOutOfBounds,
			"index %d out of bounds for list of length %d", i, list.Len())
	}
	return value, nil
}

func setIndex(base, index, value object.Object) error {
	list, ok := base.(*object.List)
	if !ok {
		return newError(TypeMismatch, "cannot index %s", base.Type())
	}
	num, ok := index.(*object.Number)
	if !ok {
		return newError(TypeMismatch,
			"list index must be a number (got %s)", index.Type())
	}
	i := int(num.Value())
	// Storing at the current length appends.
	if !list.Set(i, value) {
		return newError(IndexOutOfBounds,
			"index %d out of bounds for list of length %d", i, list.Len())
	}
	return nil
}
