package vm

import (
	"github.com/deepnoodle-ai/lualite/bytecode"
	"github.com/deepnoodle-ai/lualite/object"
)

// Observer receives VM execution events. Implementations can be used for
// tracing, profiling, or debugging without modifying the VM core. Methods
// are called synchronously during execution and should be fast.
type Observer interface {
	// OnStep is called before every instruction executes.
	OnStep(event StepEvent)

	// OnCall is called when a script function is invoked.
	OnCall(event CallEvent)

	// OnReturn is called when a script function returns.
	OnReturn(event ReturnEvent)
}

// StepEvent describes a single instruction about to execute.
type StepEvent struct {
	// Function is the name of the executing function.
	Function string

	// IP is the instruction pointer (index into the instruction sequence).
	IP int

	// Instruction is the instruction about to execute.
	Instruction bytecode.Instruction

	// FrameDepth is the current call stack depth.
	FrameDepth int
}

// CallEvent describes a function invocation.
type CallEvent struct {
	// Function is the name of the function being called.
	Function string

	// ArgCount is the number of arguments passed.
	ArgCount int

	// FrameDepth is the call stack depth after the call.
	FrameDepth int
}

// ReturnEvent describes a function return.
type ReturnEvent struct {
	// Function is the name of the function returning.
	Function string

	// Value is the returned value.
	Value object.Object

	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// NoOpObserver does nothing. Embed it to implement only the events you
// care about.
type NoOpObserver struct{}

func (NoOpObserver) OnStep(StepEvent)     {}
func (NoOpObserver) OnCall(CallEvent)     {}
func (NoOpObserver) OnReturn(ReturnEvent) {}

var _ Observer = NoOpObserver{}
