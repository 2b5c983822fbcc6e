package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/lualite"
	"github.com/deepnoodle-ai/lualite/dis"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
)

func disHandler(ctx *cli.Context) error {
	if ctx.Bool("no-color") {
		color.Enabled = false
	}
	file := ctx.Arg(0)
	source, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	program, err := lualite.Compile(string(source), lualite.WithFilename(file))
	if err != nil {
		return err
	}
	code := program.Bytecode()

	if name := ctx.String("func"); name != "" {
		fn, ok := code.FunctionNamed(name)
		if !ok {
			return fmt.Errorf("function %q not found", name)
		}
		dis.PrintFunction(code, fn, os.Stdout)
		return nil
	}
	dis.PrintProgram(code, os.Stdout)
	return nil
}
