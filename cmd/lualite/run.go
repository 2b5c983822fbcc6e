package main

import (
	"fmt"
	"os"
	"time"

	"github.com/deepnoodle-ai/lualite"
	"github.com/deepnoodle-ai/lualite/object"
	"github.com/deepnoodle-ai/lualite/vm"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/rs/zerolog"
)

func runHandler(ctx *cli.Context) error {
	file := ctx.Arg(0)
	source, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	opts := []lualite.Option{
		lualite.WithFilename(file),
		lualite.WithMaxCallDepth(ctx.Int("max-depth")),
	}
	if ctx.Bool("trace") {
		opts = append(opts, lualite.WithObserver(newTraceObserver(ctx.Bool("no-color"))))
	}

	program, err := lualite.Compile(string(source), opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := program.Call(ctx.Context(), ctx.String("entry"))
	if err != nil {
		return err
	}
	dt := time.Since(start)

	if _, isNil := result.(*object.NilType); !isNil {
		fmt.Println(result.Inspect())
	}
	if ctx.Bool("timing") {
		fmt.Printf("%v\n", dt)
	}
	return nil
}

func versionHandler(ctx *cli.Context) error {
	fmt.Printf("lualite %s (%s)\n", version, commit)
	return nil
}

// traceObserver logs every instruction, call, and return through zerolog.
type traceObserver struct {
	log zerolog.Logger
}

func newTraceObserver(noColor bool) *traceObserver {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.StampMicro,
		NoColor:    noColor,
	}
	return &traceObserver{
		log: zerolog.New(writer).With().Timestamp().Logger(),
	}
}

func (t *traceObserver) OnStep(event vm.StepEvent) {
	t.log.Debug().
		Str("fn", event.Function).
		Int("ip", event.IP).
		Int("depth", event.FrameDepth).
		Msg(event.Instruction.String())
}

func (t *traceObserver) OnCall(event vm.CallEvent) {
	t.log.Info().
		Str("fn", event.Function).
		Int("args", event.ArgCount).
		Int("depth", event.FrameDepth).
		Msg("call")
}

func (t *traceObserver) OnReturn(event vm.ReturnEvent) {
	t.log.Info().
		Str("fn", event.Function).
		Str("value", event.Value.Inspect()).
		Int("depth", event.FrameDepth).
		Msg("return")
}
