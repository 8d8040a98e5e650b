package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/bf/internal/cellkind"
	"github.com/xyproto/bf/internal/codegen"
	"github.com/xyproto/bf/internal/diag"
	"github.com/xyproto/bf/internal/guardcheck"
	"github.com/xyproto/bf/internal/ir"
	"github.com/xyproto/bf/internal/optimize"
	"github.com/xyproto/bf/internal/parse"
	"github.com/xyproto/bf/internal/toolchain"
)

// compileOptions is the compile subcommand's own flag set, layered on top of
// the CLIOptions every subcommand shares.
type compileOptions struct {
	Format     string
	Output     string
	KeepSource bool
	Debug      bool
	COptLevel  int
}

func runCompile(args []string) int {
	var g CLIOptions
	var c compileOptions
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	registerGlobalFlags(fs, &g)
	fs.StringVar(&c.Format, "f", "binary", "output format: source, binary, brainfuck, debug")
	fs.StringVar(&c.Format, "format", "binary", "output format (see -f)")
	fs.StringVar(&c.Output, "o", "", "output path (default depends on -f)")
	fs.BoolVar(&c.KeepSource, "k", false, "keep generated source/object files")
	fs.BoolVar(&c.KeepSource, "keep-source", false, "keep generated source/object files")
	fs.BoolVar(&c.Debug, "g", false, "build with debug info and the runtime's debug hooks")
	fs.IntVar(&c.COptLevel, "c-opt-level", 0, "optimization level passed to the C toolchain (-O<n>)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "bf compile: expected exactly one input file")
		return 2
	}
	input := fs.Arg(0)

	switch c.Format {
	case "source", "binary", "brainfuck", "debug":
	default:
		fmt.Fprintf(os.Stderr, "bf compile: unknown format %q\n", c.Format)
		return 2
	}
	if c.Output == "" {
		c.Output = defaultOutputFor(c.Format)
	}

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

	desc := cellkind.Describe(width)

	switch width {
	case cellkind.W8:
		err = compileWidth[int8](src, opts, input, desc, c)
	case cellkind.W16:
		err = compileWidth[int16](src, opts, input, desc, c)
	case cellkind.W32:
		err = compileWidth[int32](src, opts, input, desc, c)
	case cellkind.W64:
		err = compileWidth[int64](src, opts, input, desc, c)
	}
	if err != nil {
		printErr(input, err)
		return 1
	}
	return 0
}

func compileWidth[C ir.Cell](src []byte, opts optimize.Options, input string, desc cellkind.Descriptor, c compileOptions) error {
	prog, err := parse.Parse[C](src)
	if err != nil {
		return err.(*diag.Error).WithFile(input)
	}

	optimized, err := optimize.Run[C](prog, opts, os.Stdout)
	if err != nil {
		return err
	}

	switch c.Format {
	case "debug":
		return writeFile(c.Output, func(f *os.File) error { return optimized.Dump(f) })

	case "brainfuck":
		return writeFile(c.Output, func(f *os.File) error { return optimized.WriteBF(f) })

	case "source":
		return emitSource[C](optimized, desc, c)

	default: // "binary"
		return emitBinary[C](optimized, desc, c)
	}
}

// emitSource renders the appropriate back-end's text to disk without
// invoking the external toolchain: a single file for a pure-output program,
// or the asm body plus its C runtime when the program touches memory.
func emitSource[C ir.Cell](p *ir.Program[C], desc cellkind.Descriptor, c compileOptions) error {
	plan := codegen.ComputePlan[C](p, desc.Bytes)

	if !plan.UsesMem {
		text, err := codegen.GenerateC[C](p, desc, plan, c.Debug)
		if err != nil {
			return err
		}
		return writeFile(c.Output+".c", writeString(text))
	}

	out, err := codegen.GenerateAsm[C](p, desc, plan, c.Debug)
	if err != nil {
		return err
	}
	if err := writeFile(c.Output+"-runtime.c", writeString(out.Runtime)); err != nil {
		return err
	}
	return writeFile(c.Output+".asm", writeString(out.Asm))
}

// emitBinary generates the same back-end output as emitSource, then drives
// the external toolchain to compile/assemble/link it into a final
// executable at c.Output, cleaning up intermediates unless c.KeepSource.
func emitBinary[C ir.Cell](p *ir.Program[C], desc cellkind.Descriptor, c compileOptions) error {
	plan := codegen.ComputePlan[C](p, desc.Bytes)
	if plan.UsesMem {
		if err := guardcheck.Check(plan.PageSize); err != nil {
			return fmt.Errorf("bf compile: host cannot run the generated guard-page runtime: %w", err)
		}
	}

	tools := toolchain.ResolveTools()
	base := c.Output
	var generated []string
	defer func() {
		if c.KeepSource {
			return
		}
		for _, f := range generated {
			os.Remove(f)
		}
	}()

	if !plan.UsesMem {
		text, err := codegen.GenerateC[C](p, desc, plan, c.Debug)
		if err != nil {
			return err
		}
		cfile := base + ".c"
		if err := writeFile(cfile, writeString(text)); err != nil {
			return err
		}
		generated = append(generated, cfile)

		obj := base + ".o"
		if err := tools.CompileC(cfile, obj, c.Debug, c.COptLevel); err != nil {
			return err
		}
		generated = append(generated, obj)

		return tools.Link([]string{obj}, base, c.Debug, c.COptLevel)
	}

	out, err := codegen.GenerateAsm[C](p, desc, plan, c.Debug)
	if err != nil {
		return err
	}

	runtimeFile := base + "-runtime.c"
	if err := writeFile(runtimeFile, writeString(out.Runtime)); err != nil {
		return err
	}
	generated = append(generated, runtimeFile)

	asmFile := base + ".asm"
	if err := writeFile(asmFile, writeString(out.Asm)); err != nil {
		return err
	}
	generated = append(generated, asmFile)

	runtimeObj := base + "-runtime.o"
	if err := tools.CompileC(runtimeFile, runtimeObj, c.Debug, c.COptLevel); err != nil {
		return err
	}
	generated = append(generated, runtimeObj)

	asmObj := base + ".o"
	if err := tools.Assemble(asmFile, asmObj, c.Debug, c.COptLevel); err != nil {
		return err
	}
	generated = append(generated, asmObj)

	return tools.Link([]string{runtimeObj, asmObj}, base, c.Debug, c.COptLevel)
}

func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return diag.Wrap(path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return diag.Wrap(path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return diag.Wrap(path, err)
	}
	return f.Close()
}

func writeString(s string) func(f *os.File) error {
	return func(f *os.File) error {
		_, err := f.WriteString(s)
		return err
	}
}
