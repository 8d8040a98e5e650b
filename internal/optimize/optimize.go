// Package optimize implements the seven composable peephole/whole-program
// passes and the driver that schedules them, per spec §4.3. Every pass is
// pure: input IR in, fresh IR out, no shared mutable state between passes.
package optimize

import (
	"io"

	"github.com/xyproto/bf/internal/ir"
)

// Options selects which passes run. The zero value is "none", matching the
// CLI's documented default starting point.
type Options struct {
	Fold          bool
	Set           bool
	AddTo         bool
	Write         bool
	Deadcode      bool
	Skip          bool
	Constexpr     bool
	ConstexprEcho bool
}

// All returns the option set with every pass enabled.
func All() Options {
	return Options{Fold: true, Set: true, AddTo: true, Write: true, Deadcode: true, Skip: true, Constexpr: true, ConstexprEcho: true}
}

// None returns the option set with every pass disabled (the zero value,
// spelled out for readability at call sites).
func None() Options {
	return Options{}
}

// Run executes the fixed-point schedule described in spec §4.3:
//
//	code := fold? fold(input) : clone(input)
//	if set:      code := set(code)
//	if add_to:   code := add_to(code)
//	if write:    code := write(code)
//	if deadcode: code := deadcode(code)
//	if fold:     code := fold(code)
//	if skip:     code := skip(code)
//	if constexpr:
//	    code := constexpr(code, echo)
//	    ... then fold, set, add_to, write, deadcode, fold, skip again ...
//
// stdout receives constexpr's echoed bytes, if enabled; it is never touched
// when Constexpr is false.
func Run[C ir.Cell](input *ir.Program[C], opts Options, stdout io.Writer) (*ir.Program[C], error) {
	var code *ir.Program[C]
	if opts.Fold {
		code = Fold(input)
	} else {
		code = input.Clone()
	}

	if opts.Set {
		code = Set(code)
	}
	if opts.AddTo {
		code = AddTo(code)
	}
	if opts.Write {
		code = Write(code)
	}
	if opts.Deadcode {
		code = Deadcode(code)
	}
	if opts.Fold {
		code = Fold(code)
	}
	if opts.Skip {
		code = Skip(code)
	}

	if opts.Constexpr {
		var err error
		code, err = Constexpr(code, opts.ConstexprEcho, stdout)
		if err != nil {
			return nil, err
		}
		if opts.Fold {
			code = Fold(code)
		}
		if opts.Set {
			code = Set(code)
		}
		if opts.AddTo {
			code = AddTo(code)
		}
		if opts.Write {
			code = Write(code)
		}
		if opts.Deadcode {
			code = Deadcode(code)
		}
		if opts.Fold {
			code = Fold(code)
		}
		if opts.Skip {
			code = Skip(code)
		}
	}

	return code, nil
}
