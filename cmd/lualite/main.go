package main

import (
	"os"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	app := cli.New("lualite").
		Description("Embeddable scripting with register bytecode").
		Version(version)

	app.GlobalFlags(
		cli.Bool("no-color", "").Env("NO_COLOR").Help("Disable colored output"),
	)

	// Root command: compile a script and run its entry function
	app.Main().
		Args("file").
		Flags(
			cli.String("entry", "e").Help("Function to call").Default("main"),
			cli.Bool("timing", "").Help("Show execution time"),
			cli.Bool("trace", "t").Help("Log every instruction executed"),
			cli.Int("max-depth", "").Help("Call depth limit").Default(1024),
		).
		Run(runHandler)

	// Disassemble command
	app.Command("dis").
		Description("Disassemble lualite bytecode").
		Args("file").
		Flags(
			cli.String("func", "").Help("Function to disassemble"),
		).
		Run(disHandler)

	// Version command
	app.Command("version").
		Description("Print version information").
		Run(versionHandler)

	if err := app.Execute(); err != nil {
		if cli.IsHelpRequested(err) {
			return
		}
		printError(err.Error())
		os.Exit(cli.GetExitCode(err))
	}
}

func printError(msg string) {
	if color.ShouldColorize(os.Stderr) {
		msg = color.Red.Apply(msg)
	}
	os.Stderr.WriteString(msg + "\n")
}
