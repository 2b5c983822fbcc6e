package compiler

import (
	"math"

	"github.com/deepnoodle-ai/lualite/ast"
	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/op"
)

// placeholder marks a jump target that is back-patched once the guarded
// block has been lowered.
const placeholder = -1

// tempAllocator hands out temporary value slots with stack discipline: a
// slot is reclaimed as soon as the enclosing operation has consumed its
// value, so nested subexpressions reuse slots. The high-water mark
// determines how many registers the temporaries need.
type tempAllocator struct {
	next int
	max  int
}

func (t *tempAllocator) take() int {
	id := t.next
	t.next++
	if t.next > t.max {
		t.max = t.next
	}
	return id
}

func (t *tempAllocator) mark() int { return t.next }

func (t *tempAllocator) releaseTo(mark int) { t.next = mark }

type constantKey struct {
	kind object.Type
	num  float64
	str  string
	flag bool
}

// functionCompiler lowers a single function body. Temporary slots are
// encoded as negative register operands during lowering, because the number
// of named locals (and therefore the first temporary register) is only
// known once the whole body has been seen; finishing remaps them.
type functionCompiler struct {
	compiler      *Compiler
	decl          *ast.Function
	instructions  []bytecode.Instruction
	constants     []object.Object
	constantIndex map[constantKey]int
	locals        map[string]int
	nextLocal     int
	temps         tempAllocator
}

func newFunctionCompiler(c *Compiler, decl *ast.Function) *functionCompiler {
	fc := &functionCompiler{
		compiler:      c,
		decl:          decl,
		constantIndex: make(map[constantKey]int),
		locals:        make(map[string]int, len(decl.Parameters)),
		nextLocal:     1 + len(decl.Parameters),
	}
	for i, param := range decl.Parameters {
		fc.locals[param.Name()] = 1 + i
	}
	return fc
}

func (fc *functionCompiler) compile() (*bytecode.Function, error) {
	// A nop entry instruction keeps the function's first real instruction
	// jumpable without special-casing offset 0.
	fc.emit(op.Nop)
	for _, stmt := range fc.decl.Body {
		if err := fc.compileStatement(stmt); err != nil {
			return nil, err
		}
		fc.temps.releaseTo(0)
	}
	// Falling off the end of a function returns nil.
	fc.emit(op.Move, bytecode.Reg(0), fc.nilOperand())
	fc.emit(op.Return)

	registerCount := fc.nextLocal + fc.temps.max
	if registerCount > bytecode.MaxRegisters {
		return nil, newError(TooManyRegisters, fc.decl.Pos(),
			"function %q needs %d registers (max %d)",
			fc.decl.Name.Name(), registerCount, bytecode.MaxRegisters)
	}
	fc.remapTemporaries()

	parameters := make([]string, 0, len(fc.decl.Parameters))
	for _, param := range fc.decl.Parameters {
		parameters = append(parameters, param.Name())
	}
	return bytecode.NewFunction(fc.decl.Name.Name(), parameters,
		registerCount, fc.instructions, fc.constants), nil
}

// remapTemporaries rewrites the negative temporary encodings to real
// register indices following the named locals.
func (fc *functionCompiler) remapTemporaries() {
	remap := func(o bytecode.Operand) bytecode.Operand {
		if o.Kind == bytecode.OperandRegister && o.Value < 0 {
			o.Value = fc.nextLocal + (-o.Value - 1)
		}
		return o
	}
	for i := range fc.instructions {
		fc.instructions[i].A = remap(fc.instructions[i].A)
		fc.instructions[i].B = remap(fc.instructions[i].B)
		fc.instructions[i].C = remap(fc.instructions[i].C)
	}
}

// emit appends an instruction and returns its index.
func (fc *functionCompiler) emit(code op.Code, operands ...bytecode.Operand) int {
	fc.instructions = append(fc.instructions, bytecode.NewInstruction(code, operands...))
	return len(fc.instructions) - 1
}

// patchJump sets the jump at the given instruction index to target the next
// instruction to be emitted.
func (fc *functionCompiler) patchJump(index int) {
	fc.instructions[index].A = bytecode.Addr(len(fc.instructions))
}

func (fc *functionCompiler) tempOperand(id int) bytecode.Operand {
	return bytecode.Reg(-(id + 1))
}

// localRegister returns the register bound to the given name, allocating a
// dedicated register on first assignment.
func (fc *functionCompiler) localRegister(name string) bytecode.Operand {
	if reg, ok := fc.locals[name]; ok {
		return bytecode.Reg(reg)
	}
	reg := fc.nextLocal
	fc.nextLocal++
	fc.locals[name] = reg
	return bytecode.Reg(reg)
}

func (fc *functionCompiler) constantOperand(obj object.Object) bytecode.Operand {
	key := constantKey{kind: obj.Type()}
	switch obj := obj.(type) {
	case *object.Number:
		key.num = obj.Value()
	case *object.String:
		key.str = obj.Value()
	case *object.Bool:
		key.flag = obj.Value()
	}
	if index, ok := fc.constantIndex[key]; ok {
		return bytecode.Const(index)
	}
	index := len(fc.constants)
	fc.constants = append(fc.constants, obj)
	fc.constantIndex[key] = index
	return bytecode.Const(index)
}

func (fc *functionCompiler) nilOperand() bytecode.Operand {
	return fc.constantOperand(object.Nil)
}

// numberOperand encodes small integral values as immediates and everything
// else through the constant table.
func (fc *functionCompiler) numberOperand(value float64) bytecode.Operand {
	if math.Trunc(value) == value &&
		value >= bytecode.MinImmediate && value <= bytecode.MaxImmediate {
		return bytecode.Imm(int(value))
	}
	return fc.constantOperand(object.NewNumber(value))
}

func (fc *functionCompiler) compileStatement(stmt ast.Statement) error {
	switch stmt := stmt.(type) {
	case *ast.Assign:
		return fc.compileAssign(stmt)
	case *ast.If:
		return fc.compileIf(stmt)
	case *ast.While:
		return fc.compileWhile(stmt)
	case *ast.Return:
		return fc.compileReturn(stmt)
	case *ast.ExprStatement:
		mark := fc.temps.mark()
		dst := fc.tempOperand(fc.temps.take())
		if err := fc.compileExprInto(dst, stmt.Value); err != nil {
			return err
		}
		fc.temps.releaseTo(mark)
		return nil
	default:
		return newError(InvalidAssignmentTarget, stmt.Pos(),
			"cannot compile statement %q", stmt.String())
	}
}

func (fc *functionCompiler) compileAssign(stmt *ast.Assign) error {
	switch target := stmt.Target.(type) {
	case *ast.Ident:
		// The destination register is allocated before the value compiles,
		// so "x = x + 1" on a fresh x reads that register's nil.
		dst := fc.localRegister(target.Name())
		return fc.compileExprInto(dst, stmt.Value)
	case *ast.Index:
		mark := fc.temps.mark()
		base, err := fc.compileToOperand(target.Left)
		if err != nil {
			return err
		}
		index, err := fc.compileToOperand(target.Index)
		if err != nil {
			return err
		}
		value, err := fc.compileToOperand(stmt.Value)
		if err != nil {
			return err
		}
		fc.emit(op.SetIndex, base, index, value)
		fc.temps.releaseTo(mark)
		return nil
	default:
		return newError(InvalidAssignmentTarget, stmt.Target.Pos(),
			"cannot assign to %q", stmt.Target.String())
	}
}

func (fc *functionCompiler) compileBlock(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := fc.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (fc *functionCompiler) compileIf(stmt *ast.If) error {
	mark := fc.temps.mark()
	condition := fc.tempOperand(fc.temps.take())
	if err := fc.compileExprInto(condition, stmt.Condition); err != nil {
		return err
	}
	// Skip the guarded block when the condition is falsy.
	jumpFalse := fc.emit(op.JumpIfFalse, bytecode.Addr(placeholder), condition)
	fc.temps.releaseTo(mark)
	if err := fc.compileBlock(stmt.Consequence); err != nil {
		return err
	}
	if stmt.Alternative == nil {
		fc.patchJump(jumpFalse)
		return nil
	}
	jumpEnd := fc.emit(op.Jump, bytecode.Addr(placeholder))
	fc.patchJump(jumpFalse)
	if err := fc.compileBlock(stmt.Alternative); err != nil {
		return err
	}
	fc.patchJump(jumpEnd)
	return nil
}

func (fc *functionCompiler) compileWhile(stmt *ast.While) error {
	loopStart := len(fc.instructions)
	mark := fc.temps.mark()
	condition := fc.tempOperand(fc.temps.take())
	if err := fc.compileExprInto(condition, stmt.Condition); err != nil {
		return err
	}
	jumpOut := fc.emit(op.JumpIfFalse, bytecode.Addr(placeholder), condition)
	fc.temps.releaseTo(mark)
	if err := fc.compileBlock(stmt.Body); err != nil {
		return err
	}
	fc.emit(op.Jump, bytecode.Addr(loopStart))
	fc.patchJump(jumpOut)
	return nil
}

func (fc *functionCompiler) compileReturn(stmt *ast.Return) error {
	if stmt.Value == nil {
		fc.emit(op.Move, bytecode.Reg(0), fc.nilOperand())
	} else if err := fc.compileExprInto(bytecode.Reg(0), stmt.Value); err != nil {
		return err
	}
	fc.emit(op.Return)
	return nil
}

var binaryOpcodes = map[string]op.Code{
	"+":  op.Add,
	"-":  op.Sub,
	"*":  op.Mul,
	"/":  op.Div,
	"%":  op.Rem,
	"^":  op.Pow,
	"<":  op.LessThan,
	"<=": op.LessThanOrEqual,
	">":  op.GreaterThan,
	">=": op.GreaterThanOrEqual,
	"==": op.Equal,
	"!=": op.NotEqual,
}

// compileExprInto lowers an expression so that its value lands in dst.
func (fc *functionCompiler) compileExprInto(dst bytecode.Operand, expr ast.Expression) error {
	switch expr := expr.(type) {
	case *ast.Ident:
		src, ok := fc.locals[expr.Name()]
		if !ok {
			return newError(UnknownVariable, expr.Pos(),
				"variable %q is not defined", expr.Name())
		}
		if dst != bytecode.Reg(src) {
			fc.emit(op.Move, dst, bytecode.Reg(src))
		}
		return nil
	case *ast.Number:
		fc.emit(op.Move, dst, fc.numberOperand(expr.Value))
		return nil
	case *ast.Bool:
		fc.emit(op.Move, dst, fc.constantOperand(object.FromBool(expr.Value)))
		return nil
	case *ast.Nil:
		fc.emit(op.Move, dst, fc.nilOperand())
		return nil
	case *ast.String_:
		fc.emit(op.Move, dst, fc.constantOperand(object.NewString(expr.Value)))
		return nil
	case *ast.Prefix:
		return fc.compilePrefix(dst, expr)
	case *ast.Infix:
		return fc.compileInfix(dst, expr)
	case *ast.Call:
		return fc.compileCall(dst, expr)
	case *ast.Index:
		mark := fc.temps.mark()
		base, err := fc.compileToOperand(expr.Left)
		if err != nil {
			return err
		}
		index, err := fc.compileToOperand(expr.Index)
		if err != nil {
			return err
		}
		fc.emit(op.GetIndex, dst, base, index)
		fc.temps.releaseTo(mark)
		return nil
	default:
		return newError(InvalidAssignmentTarget, expr.Pos(),
			"cannot compile expression %q", expr.String())
	}
}

func (fc *functionCompiler) compilePrefix(dst bytecode.Operand, expr *ast.Prefix) error {
	if expr.Operator == "-" {
		// Negated numeric literals fold into a single constant.
		if num, ok := expr.Right.(*ast.Number); ok {
			fc.emit(op.Move, dst, fc.numberOperand(-num.Value))
			return nil
		}
	}
	mark := fc.temps.mark()
	src, err := fc.compileToOperand(expr.Right)
	if err != nil {
		return err
	}
	switch expr.Operator {
	case "-":
		fc.emit(op.Neg, dst, src)
	case "not":
		fc.emit(op.Not, dst, src)
	}
	fc.temps.releaseTo(mark)
	return nil
}

func (fc *functionCompiler) compileInfix(dst bytecode.Operand, expr *ast.Infix) error {
	switch expr.Operator {
	case "and", "or":
		return fc.compileShortCircuit(dst, expr)
	}
	code, ok := binaryOpcodes[expr.Operator]
	if !ok {
		return newError(InvalidAssignmentTarget, expr.Pos(),
			"unsupported operator %q", expr.Operator)
	}
	mark := fc.temps.mark()
	left, err := fc.compileToOperand(expr.Left)
	if err != nil {
		return err
	}
	right, err := fc.compileToOperand(expr.Right)
	if err != nil {
		return err
	}
	fc.emit(code, dst, left, right)
	fc.temps.releaseTo(mark)
	return nil
}

// compileShortCircuit lowers "and" and "or". Both operands compile into the
// same register, with a conditional jump over the right operand, so the
// result is the deciding operand's value. When dst is a named local the
// right operand may still read it, so the lowering goes through a temporary.
func (fc *functionCompiler) compileShortCircuit(dst bytecode.Operand, expr *ast.Infix) error {
	target := dst
	mark := fc.temps.mark()
	if dst.Value > 0 {
		target = fc.tempOperand(fc.temps.take())
	}
	var err error
	if expr.Operator == "and" {
		err = fc.compileAnd(target, expr)
	} else {
		err = fc.compileOr(target, expr)
	}
	if err != nil {
		return err
	}
	if target != dst {
		fc.emit(op.Move, dst, target)
		fc.temps.releaseTo(mark)
	}
	return nil
}

// compileAnd short-circuits: the right operand is skipped entirely when the
// left operand is falsy.
func (fc *functionCompiler) compileAnd(dst bytecode.Operand, expr *ast.Infix) error {
	if err := fc.compileExprInto(dst, expr.Left); err != nil {
		return err
	}
	jump := fc.emit(op.JumpIfFalse, bytecode.Addr(placeholder), dst)
	if err := fc.compileExprInto(dst, expr.Right); err != nil {
		return err
	}
	fc.patchJump(jump)
	return nil
}

func (fc *functionCompiler) compileOr(dst bytecode.Operand, expr *ast.Infix) error {
	if err := fc.compileExprInto(dst, expr.Left); err != nil {
		return err
	}
	jump := fc.emit(op.JumpIfTrue, bytecode.Addr(placeholder), dst)
	if err := fc.compileExprInto(dst, expr.Right); err != nil {
		return err
	}
	fc.patchJump(jump)
	return nil
}

func (fc *functionCompiler) compileCall(dst bytecode.Operand, call *ast.Call) error {
	name := call.Name.Name()
	info, ok := fc.compiler.table[name]
	if !ok {
		return newError(UnknownFunction, call.Name.Pos(),
			"function %q is not defined", name)
	}
	if len(call.Arguments) != info.arity {
		return newError(WrongArgumentCount, call.Pos(),
			"function %q takes %d arguments (%d given)",
			name, info.arity, len(call.Arguments))
	}
	mark := fc.temps.mark()
	// Arguments occupy consecutive temporaries; the stack discipline of the
	// allocator guarantees consecutiveness even when an argument expression
	// uses temporaries of its own.
	argStart := bytecode.Reg(0)
	for i, arg := range call.Arguments {
		slot := fc.tempOperand(fc.temps.take())
		if i == 0 {
			argStart = slot
		}
		if err := fc.compileExprInto(slot, arg); err != nil {
			return err
		}
	}
	fc.emit(op.Call, dst, bytecode.Fn(info.index), argStart)
	fc.temps.releaseTo(mark)
	return nil
}

// compileToOperand yields an operand for an expression without forcing a
// register: identifiers use their own register, literals become immediates
// or constants, and anything compound lands in a fresh temporary.
func (fc *functionCompiler) compileToOperand(expr ast.Expression) (bytecode.Operand, error) {
	switch expr := expr.(type) {
	case *ast.Ident:
		src, ok := fc.locals[expr.Name()]
		if !ok {
			return bytecode.Operand{}, newError(UnknownVariable, expr.Pos(),
				"variable %q is not defined", expr.Name())
		}
		return bytecode.Reg(src), nil
	case *ast.Number:
		return fc.numberOperand(expr.Value), nil
	case *ast.Bool:
		return fc.constantOperand(object.FromBool(expr.Value)), nil
	case *ast.Nil:
		return fc.nilOperand(), nil
	case *ast.String_:
		return fc.constantOperand(object.NewString(expr.Value)), nil
	case *ast.Prefix:
		if expr.Operator == "-" {
			if num, ok := expr.Right.(*ast.Number); ok {
				return fc.numberOperand(-num.Value), nil
			}
		}
	}
	dst := fc.tempOperand(fc.temps.take())
	if err := fc.compileExprInto(dst, expr); err != nil {
		return bytecode.Operand{}, err
	}
	return dst, nil
}
