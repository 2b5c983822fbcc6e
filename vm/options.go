package vm

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithMaxCallDepth bounds how deep script-level calls may nest. Exceeding
// the bound fails with a stack overflow error rather than crashing the
// host. Values below 1 are ignored.
func WithMaxCallDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		if depth >= 1 {
			vm.maxCallDepth = depth
		}
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
