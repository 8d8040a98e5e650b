package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/bf/internal/cellkind"
	"github.com/xyproto/bf/internal/diag"
	"github.com/xyproto/bf/internal/interp"
	"github.com/xyproto/bf/internal/ir"
	"github.com/xyproto/bf/internal/optimize"
	"github.com/xyproto/bf/internal/parse"
)

func runExec(args []string) int {
	var g CLIOptions
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	registerGlobalFlags(fs, &g)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "bf exec: expected exactly one input file")
		return 2
	}
	input := fs.Arg(0)

	width, ok := parseWidthOrFail(g.CellSize)
	if !ok {
		return 1
	}
	opts, err := parseOptSpec(g.Opt)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bf: "+err.Error())
		return 2
	}
	opts.ConstexprEcho = opts.Constexpr && g.EchoConstexpr

	src, err := readSource(input)
	if err != nil {
		printErr(input, err)
		return 1
	}

	switch width {
	case cellkind.W8:
		err = execWidth[int8](src, opts, input)
	case cellkind.W16:
		err = execWidth[int16](src, opts, input)
	case cellkind.W32:
		err = execWidth[int32](src, opts, input)
	case cellkind.W64:
		err = execWidth[int64](src, opts, input)
	}
	if err != nil {
		printErr(input, err)
		return 1
	}
	return 0
}

func execWidth[C ir.Cell](src []byte, opts optimize.Options, input string) error {
	prog, err := parse.Parse[C](src)
	if err != nil {
		return err.(*diag.Error).WithFile(input)
	}

	optimized, err := optimize.Run[C](prog, opts, os.Stdout)
	if err != nil {
		return err
	}

	return interp.Run[C](optimized, os.Stdin, os.Stdout)
}
