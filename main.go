// Command bf is an ahead-of-time optimizing compiler and reference
// interpreter for Brainfuck. Source is parsed to an IR, optimized by a
// configurable sequence of passes, and then either interpreted in-process
// (`exec`) or translated to native code (`compile`): a single C
// translation unit, or a guard-page C runtime plus a NASM x86-64 assembly
// body, depending on whether the program touches memory at all.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/bf/internal/cellkind"
	"github.com/xyproto/bf/internal/diag"
	"github.com/xyproto/bf/internal/optimize"
)

const versionString = "bf 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "compile":
		return runCompile(args[1:])
	case "exec":
		return runExec(args[1:])
	case "-V", "--version":
		fmt.Println(versionString)
		return 0
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "bf: unknown subcommand %q\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  bf compile [-s SIZE] [-O OPT] [-e] [-f FORMAT] [-k] [-g] [--c-opt-level N] [-o OUT] <input>
  bf exec    [-s SIZE] [-O OPT] [-e] <input>`)
}

// CLIOptions is the global option set every subcommand shares, parsed into
// one struct the way the teacher's cli.go collects flags into a single
// CommandContext before dispatch.
type CLIOptions struct {
	CellSize      string
	Opt           string
	EchoConstexpr bool
}

func registerGlobalFlags(fs *flag.FlagSet, o *CLIOptions) {
	fs.StringVar(&o.CellSize, "s", "32", "cell size in bits: 8, 16, 32, or 64")
	fs.StringVar(&o.CellSize, "cell-size", "32", "cell size in bits: 8, 16, 32, or 64")
	fs.StringVar(&o.Opt, "O", "none", "optimizer passes: csv of fold,set,add_to,write,deadcode,skip,constexpr,all,none; +/- prefixes add/remove")
	fs.StringVar(&o.Opt, "opt", "none", "optimizer passes (see -O)")
	fs.BoolVar(&o.EchoConstexpr, "e", false, "stream constexpr-evaluated bytes to stdout during compilation")
	fs.BoolVar(&o.EchoConstexpr, "echo-constexpr", false, "stream constexpr-evaluated bytes to stdout during compilation")
}

// parseOptSpec folds a -O csv left to right over optimize.None(), per
// spec §6: "all"/"none" reset the whole set, a +/- prefixed token adds or
// removes that one pass, and a bare token (no prefix) adds it.
func parseOptSpec(csv string) (optimize.Options, error) {
	opts := optimize.None()
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		add := true
		name := tok
		switch tok[0] {
		case '+':
			name = tok[1:]
		case '-':
			add = false
			name = tok[1:]
		}

		switch name {
		case "all":
			opts = optimize.All()
			continue
		case "none":
			opts = optimize.None()
			continue
		case "fold":
			opts.Fold = add
		case "set":
			opts.Set = add
		case "add_to", "addto":
			opts.AddTo = add
		case "write":
			opts.Write = add
		case "deadcode":
			opts.Deadcode = add
		case "skip":
			opts.Skip = add
		case "constexpr":
			opts.Constexpr = add
			if !add {
				opts.ConstexprEcho = false
			}
		default:
			return opts, fmt.Errorf("unknown optimizer pass: %q", name)
		}
	}
	return opts, nil
}

func readSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(path, err)
	}
	return src, nil
}

func printErr(input string, err error) {
	fmt.Fprintln(os.Stderr, diag.Wrap(input, err).Error())
}

func defaultOutputFor(format string) string {
	switch format {
	case "brainfuck":
		return "out.bf"
	case "debug":
		return "out.txt"
	default:
		return "a.out"
	}
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseWidthOrFail(s string) (cellkind.Width, bool) {
	w, err := cellkind.ParseWidth(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bf: "+err.Error())
		return 0, false
	}
	return w, true
}
