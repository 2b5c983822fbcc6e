package vm

import (
	"context"
	"math"
	"testing"

	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/compiler"
	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/parser"
	"github.com/deepnoodle-ai/wonton/assert"
)

func compile(t *testing.T, source string) *bytecode.Program {
	t.Helper()
	parsed, err := parser.Parse(source)
	assert.Nil(t, err)
	program, err := compiler.Compile(parsed)
	assert.Nil(t, err)
	return program
}

func call(t *testing.T, source, name string, args ...object.Object) object.Object {
	t.Helper()
	result, err := Run(context.Background(), compile(t, source), name, args)
	assert.Nil(t, err)
	return result
}

func callErr(t *testing.T, source, name string, args ...object.Object) *Error {
	t.Helper()
	_, err := Run(context.Background(), compile(t, source), name, args)
	assert.NotNil(t, err)
	runtimeErr, ok := err.(*Error)
	assert.True(t, ok)
	return runtimeErr
}

func number(t *testing.T, obj object.Object) float64 {
	t.Helper()
	num, ok := obj.(*object.Number)
	assert.True(t, ok, "expected number, got %s", obj.Type())
	return num.Value()
}

func TestMax(t *testing.T) {
	source := "function f(a, b) if a > b then return a else return b end end"
	assert.Equal(t, number(t, call(t, source, "f",
		object.NewNumber(5), object.NewNumber(3))), 5.0)
	assert.Equal(t, number(t, call(t, source, "f",
		object.NewNumber(2), object.NewNumber(9))), 9.0)
}

func TestGCD(t *testing.T) {
	source := `
		function gcd(a, b)
			while a != b do
				if a > b then
					a = a - b
				else
					b = b - a
				end
			end
			return a
		end
	`
	assert.Equal(t, number(t, call(t, source, "gcd",
		object.NewNumber(250), object.NewNumber(135))), 5.0)
	assert.Equal(t, number(t, call(t, source, "gcd",
		object.NewNumber(12), object.NewNumber(18))), 6.0)
}

func TestBinarySearch(t *testing.T) {
	source := `
		function binary_search(array, length, needle)
			first = 0
			last = length - 1
			while first <= last do
				mid = (first + last) / 2
				mid = mid - (mid % 1)
				if array[mid] == needle then
					return mid
				end
				if array[mid] < needle then
					first = mid + 1
				else
					last = mid - 1
				end
			end
			return false
		end
	`
	program := compile(t, source)
	values := []int{1, 3, 4, 6, 8, 9, 10, 11, 14, 15}
	expected := map[int]int{
		1: 0, 3: 1, 4: 2, 6: 3, 8: 4, 9: 5, 10: 6, 11: 7, 14: 8, 15: 9,
	}
	for needle := 0; needle <= 16; needle++ {
		items := make([]object.Object, len(values))
		for i, v := range values {
			items[i] = object.NewNumber(float64(v))
		}
		list := object.NewList(items)
		result, err := Run(context.Background(), program, "binary_search",
			[]object.Object{list,
				object.NewNumber(float64(len(values))),
				object.NewNumber(float64(needle))})
		assert.Nil(t, err)
		if index, found := expected[needle]; found {
			assert.Equal(t, number(t, result), float64(index),
				"needle %d", needle)
		} else {
			assert.Equal(t, result, object.Object(object.False),
				"needle %d", needle)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	source := `
		function boom() return 1 + true end
		function and_short() return false and boom() end
		function or_short() return true or boom() end
		function and_eval() return true and boom() end
	`
	// The right operand must not be evaluated
	assert.Equal(t, call(t, source, "and_short"), object.Object(object.False))
	assert.Equal(t, call(t, source, "or_short"), object.Object(object.True))
	// ...but it is evaluated when the left side does not decide
	err := callErr(t, source, "and_eval")
	assert.Equal(t, err.Kind, TypeMismatch)
}

func TestShortCircuitYieldsOperandValue(t *testing.T) {
	source := `
		function f(a, b) return a and b end
		function g(a, b) return a or b end
	`
	result := call(t, source, "f", object.Nil, object.NewNumber(1))
	assert.Equal(t, result, object.Object(object.Nil))
	result = call(t, source, "g", object.Nil, object.NewNumber(7))
	assert.Equal(t, number(t, result), 7.0)
}

func TestShortCircuitIntoOwnVariable(t *testing.T) {
	// The right operand reads the variable being assigned, so the old value
	// must survive evaluation of the left operand.
	source := `
		function nothing() return nil end
		function f(x)
			x = nothing() or x
			return x
		end
	`
	result := call(t, source, "f", object.NewNumber(9))
	assert.Equal(t, number(t, result), 9.0)
}

func TestArityMismatch(t *testing.T) {
	source := "function two(a, b) return a end"
	err := callErr(t, source, "two", object.NewNumber(1))
	assert.Equal(t, err.Kind, ArityMismatch)
	err = callErr(t, source, "two",
		object.NewNumber(1), object.NewNumber(2), object.NewNumber(3))
	assert.Equal(t, err.Kind, ArityMismatch)
}

func TestFunctionNotFound(t *testing.T) {
	err := callErr(t, "function f() return 1 end", "g")
	assert.Equal(t, err.Kind, FunctionNotFound)
}

func TestStackOverflow(t *testing.T) {
	source := "function recurse(n) return recurse(n + 1) end"
	program := compile(t, source)
	_, err := New(program, WithMaxCallDepth(32)).Call(
		context.Background(), "recurse", object.NewNumber(0))
	assert.NotNil(t, err)
	runtimeErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, runtimeErr.Kind, StackOverflow)
}

func TestRecursionWithinLimit(t *testing.T) {
	source := `
		function fib(n)
			if n < 2 then return n end
			return fib(n - 1) + fib(n - 2)
		end
	`
	assert.Equal(t, number(t, call(t, source, "fib", object.NewNumber(10))), 55.0)
}

func TestDivisionByZero(t *testing.T) {
	source := "function f(a, b) return a / b end"
	assert.True(t, math.IsInf(number(t, call(t, source, "f",
		object.NewNumber(1), object.NewNumber(0))), 1))
	assert.True(t, math.IsInf(number(t, call(t, source, "f",
		object.NewNumber(-1), object.NewNumber(0))), -1))
	assert.True(t, math.IsNaN(number(t, call(t, source, "f",
		object.NewNumber(0), object.NewNumber(0)))))
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		expr     string
		expected float64
	}{
		{"1 + 2", 3},
		{"10 - 4", 6},
		{"3 * 2.5", 7.5},
		{"7 / 2", 3.5},
		{"7 % 3", 1},
		{"2 ^ 10", 1024},
		{"2 ^ 3 ^ 2", 512},
		{"-(3 + 4)", -7},
		{"1 + 2 * 3", 7},
	}
	for _, tt := range tests {
		source := "function f() return " + tt.expr + " end"
		assert.Equal(t, number(t, call(t, source, "f")), tt.expected,
			"expr: %s", tt.expr)
	}
}

func TestArithmeticTypeMismatch(t *testing.T) {
	err := callErr(t, "function f(a) return a + 1 end", "f", object.True)
	assert.Equal(t, err.Kind, TypeMismatch)
	err = callErr(t, `function f() return "a" + "b" end`, "f")
	assert.Equal(t, err.Kind, TypeMismatch)
	err = callErr(t, "function f(a) return -a end", "f", object.NewString("x"))
	assert.Equal(t, err.Kind, TypeMismatch)
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		expr     string
		expected bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"4 >= 4", true},
		{"1 == 1", true},
		{"1 != 1", false},
		{`"abc" < "abd"`, true},
		{`"b" >= "a"`, true},
		{`"a" == "a"`, true},
		// Mismatched types: unequal, never an error
		{`1 == "1"`, false},
		{`1 != "1"`, true},
		{"nil == false", false},
	}
	for _, tt := range tests {
		source := "function f() return " + tt.expr + " end"
		assert.Equal(t, call(t, source, "f"),
			object.Object(object.FromBool(tt.expected)), "expr: %s", tt.expr)
	}
}

func TestNaNOrderingIsFalse(t *testing.T) {
	// 0/0 is NaN; every ordering against NaN must be false, including > and
	// >=, and NaN is not equal to itself.
	tests := []string{
		"(0 / 0) < 1",
		"(0 / 0) <= 1",
		"(0 / 0) > 1",
		"(0 / 0) >= 1",
		"1 < (0 / 0)",
		"1 > (0 / 0)",
		"(0 / 0) == (0 / 0)",
	}
	for _, expr := range tests {
		source := "function f() return " + expr + " end"
		assert.Equal(t, call(t, source, "f"),
			object.Object(object.False), "expr: %s", expr)
	}
}

func TestOrderingTypeMismatch(t *testing.T) {
	err := callErr(t, `function f() return 1 < "2" end`, "f")
	assert.Equal(t, err.Kind, TypeMismatch)
	err = callErr(t, "function f() return true < false end", "f")
	assert.Equal(t, err.Kind, TypeMismatch)
}

func TestNot(t *testing.T) {
	source := "function f(a) return not a end"
	assert.Equal(t, call(t, source, "f", object.Nil), object.Object(object.True))
	assert.Equal(t, call(t, source, "f", object.False), object.Object(object.True))
	assert.Equal(t, call(t, source, "f", object.NewNumber(0)), object.Object(object.False))
	assert.Equal(t, call(t, source, "f", object.NewString("")), object.Object(object.False))
}

func TestFalsiness(t *testing.T) {
	// Only nil and false are falsy: 0 and "" take the then-branch
	source := "function f(a) if a then return 1 else return 2 end end"
	assert.Equal(t, number(t, call(t, source, "f", object.NewNumber(0))), 1.0)
	assert.Equal(t, number(t, call(t, source, "f", object.NewString(""))), 1.0)
	assert.Equal(t, number(t, call(t, source, "f", object.Nil)), 2.0)
	assert.Equal(t, number(t, call(t, source, "f", object.False)), 2.0)
}

func TestIndexing(t *testing.T) {
	source := "function f(a, i) return a[i] end"
	list := object.NewList([]object.Object{
		object.NewNumber(10), object.NewNumber(20), object.NewNumber(30),
	})
	assert.Equal(t, number(t, call(t, source, "f", list, object.NewNumber(1))), 20.0)
	// The index truncates toward zero
	assert.Equal(t, number(t, call(t, source, "f", list, object.NewNumber(2.9))), 30.0)
}

func TestIndexOutOfBounds(t *testing.T) {
	source := "function f(a, i) return a[i] end"
	list := object.NewList([]object.Object{object.NewNumber(1)})
	err := callErr(t, source, "f", list, object.NewNumber(5))
	assert.Equal(t, err.Kind, IndexOutOfBounds)
	err = callErr(t, source, "f", list, object.NewNumber(-1))
	assert.Equal(t, err.Kind, IndexOutOfBounds)
}

func TestIndexTypeMismatch(t *testing.T) {
	err := callErr(t, "function f(a) return a[0] end", "f", object.NewNumber(1))
	assert.Equal(t, err.Kind, TypeMismatch)
	list := object.NewList(nil)
	err = callErr(t, "function f(a) return a[true] end", "f", list)
	assert.Equal(t, err.Kind, TypeMismatch)
}

func TestIndexStore(t *testing.T) {
	source := "function f(a) a[0] = 99 a[2] = 7 return a[0] end"
	list := object.NewList([]object.Object{
		object.NewNumber(1), object.NewNumber(2),
	})
	result := call(t, source, "f", list)
	assert.Equal(t, number(t, result), 99.0)
	// Lists are references: the host sees the mutation, including the
	// append at index == length
	assert.Equal(t, list.Len(), 3)
	item, _ := list.Get(2)
	assert.Equal(t, number(t, item), 7.0)
}

func TestIndexStoreOutOfBounds(t *testing.T) {
	list := object.NewList(nil)
	err := callErr(t, "function f(a) a[3] = 1 return nil end", "f", list)
	assert.Equal(t, err.Kind, IndexOutOfBounds)
}

func TestElseifChain(t *testing.T) {
	source := `
		function sign(x)
			if x > 0 then
				return 1
			elseif x < 0 then
				return -1
			else
				return 0
			end
		end
	`
	assert.Equal(t, number(t, call(t, source, "sign", object.NewNumber(5))), 1.0)
	assert.Equal(t, number(t, call(t, source, "sign", object.NewNumber(-5))), -1.0)
	assert.Equal(t, number(t, call(t, source, "sign", object.NewNumber(0))), 0.0)
}

func TestImplicitReturnIsNil(t *testing.T) {
	assert.Equal(t, call(t, "function f() x = 1 end", "f"),
		object.Object(object.Nil))
	assert.Equal(t, call(t, "function f() return end", "f"),
		object.Object(object.Nil))
}

func TestFreshRegistersPerCall(t *testing.T) {
	// A local left over from one call must not leak into the next
	source := "function f(set) if set then x = 1 end return x end"
	program := compile(t, source)
	vm := New(program)
	result, err := vm.Call(context.Background(), "f", object.True)
	assert.Nil(t, err)
	assert.Equal(t, number(t, result), 1.0)
	result, err = vm.Call(context.Background(), "f", object.False)
	assert.Nil(t, err)
	assert.Equal(t, result, object.Object(object.Nil))
}

func TestNestedCalls(t *testing.T) {
	source := `
		function double(x) return x * 2 end
		function f(a) return double(double(a)) + double(1) end
	`
	assert.Equal(t, number(t, call(t, source, "f", object.NewNumber(3))), 14.0)
}

func TestStringEquality(t *testing.T) {
	source := `function f(s) return s == "done" end`
	assert.Equal(t, call(t, source, "f", object.NewString("done")),
		object.Object(object.True))
	assert.Equal(t, call(t, source, "f", object.NewString("nope")),
		object.Object(object.False))
}

func TestContextCancellation(t *testing.T) {
	source := `
		function spin(n) return spin(n) end
	`
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	program := compile(t, source)
	_, err := Run(ctx, program, "spin", []object.Object{object.NewNumber(1)})
	assert.NotNil(t, err)
	assert.Equal(t, err, context.Canceled)
}

func TestObserverEvents(t *testing.T) {
	source := `
		function helper() return 42 end
		function main() return helper() end
	`
	program := compile(t, source)
	recorder := &recordingObserver{}
	result, err := New(program, WithObserver(recorder)).Call(
		context.Background(), "main")
	assert.Nil(t, err)
	assert.Equal(t, number(t, result), 42.0)
	assert.Equal(t, recorder.calls, []string{"helper"})
	assert.Equal(t, recorder.returns, []string{"helper", "main"})
	assert.True(t, recorder.steps > 0)
}

type recordingObserver struct {
	NoOpObserver
	steps   int
	calls   []string
	returns []string
}

func (r *recordingObserver) OnStep(StepEvent) { r.steps++ }

func (r *recordingObserver) OnCall(event CallEvent) {
	r.calls = append(r.calls, event.Function)
}

func (r *recordingObserver) OnReturn(event ReturnEvent) {
	r.returns = append(r.returns, event.Function)
}
