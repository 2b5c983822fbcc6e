// Package lualite is an embeddable scripting engine: a small Lua-flavored
// language compiled to register bytecode and executed by a virtual machine.
//
// Scripts are a set of top level functions. The host compiles source text
// once and then invokes functions by name with Go values as arguments:
//
//	program, err := lualite.Compile(source)
//	if err != nil {
//		return err
//	}
//	result, err := program.Call(ctx, "gcd", 250, 135)
//
// Scripts have no standard library and no I/O: they compute over the values
// the host passes in. A compiled Program is immutable and safe for
// concurrent calls.
package lualite

import (
	"context"

	"github.com/deepnoodle-ai/lualite/compiler"
	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/parser"
	"github.com/deepnoodle-ai/lualite/vm"
)

type config struct {
	filename  string
	vmOptions []vm.Option
}

// Option is a configuration function for Compile and Call.
type Option func(*config)

// WithFilename associates a filename with the source code, for error
// messages.
func WithFilename(name string) Option {
	return func(c *config) { c.filename = name }
}

// WithMaxCallDepth bounds script call nesting; exceeding the bound fails
// with a stack overflow error. The default is vm.DefaultMaxCallDepth.
func WithMaxCallDepth(depth int) Option {
	return func(c *config) {
		c.vmOptions = append(c.vmOptions, vm.WithMaxCallDepth(depth))
	}
}

// WithObserver attaches a vm.Observer to every call made through the
// compiled program.
func WithObserver(observer vm.Observer) Option {
	return func(c *config) {
		c.vmOptions = append(c.vmOptions, vm.WithObserver(observer))
	}
}

// Compile parses and compiles lualite source code into a Program.
func Compile(source string, options ...Option) (*Program, error) {
	var cfg config
	for _, opt := range options {
		opt(&cfg)
	}
	var parserOptions []parser.Option
	if cfg.filename != "" {
		parserOptions = append(parserOptions, parser.WithFilename(cfg.filename))
	}
	parsed, err := parser.Parse(source, parserOptions...)
	if err != nil {
		return nil, err
	}
	code, err := compiler.Compile(parsed)
	if err != nil {
		return nil, err
	}
	return &Program{
		code:      code,
		source:    source,
		filename:  cfg.filename,
		vmOptions: cfg.vmOptions,
	}, nil
}

// Call compiles the source and invokes one function. When the same program
// is called more than once, compile it once with Compile instead.
func Call(ctx context.Context, source, function string,
	args ...any) (object.Object, error) {
	program, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return program.Call(ctx, function, args...)
}
