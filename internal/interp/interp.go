// Package interp is the reference executor over the (optimized or raw) IR.
// Its semantics are ground truth: the code generator's native output must
// agree with what this package produces for the same program and input.
package interp

import (
	"bufio"
	"io"

	"github.com/xyproto/bf/internal/ir"
)

// Run executes p against in/out. The tape starts as a single zero cell at
// ptr==0 and grows on demand: Move past the end simply extends with zeros,
// while a Move that would drive ptr negative prefix-extends the tape so the
// absolute index stays non-negative (spec §4.4).
func Run[C ir.Cell](p *ir.Program[C], in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)

	tape := make([]C, 1)
	ptr := 0
	pendingFlush := false
	n := p.Len()
	pc := 0

	ensure := func(i int) {
		if i >= len(tape) {
			grown := make([]C, i+1)
			copy(grown, tape)
			tape = grown
		}
	}

	// moveTo relocates ptr by off, prefix-extending the tape if the result
	// would be negative, and returns the resulting absolute index.
	moveTo := func(off int) int {
		target := ptr + off
		if target < 0 {
			delta := -target
			grown := make([]C, len(tape)+delta)
			copy(grown[delta:], tape)
			tape = grown
			ptr += delta
			target += delta
		}
		ensure(target)
		return target
	}

	for pc < n {
		instr, _ := p.Get(pc)
		switch instr.Op {
		case ir.OpMove:
			ptr = moveTo(instr.N)

		case ir.OpAdd:
			ensure(ptr)
			tape[ptr] += instr.Val

		case ir.OpSet:
			ensure(ptr)
			tape[ptr] = instr.Val

		case ir.OpAddTo, ir.OpSubFrom:
			ensure(ptr)
			var zero C
			if tape[ptr] != zero {
				target := moveTo(instr.N)
				if instr.Op == ir.OpAddTo {
					tape[target] += tape[ptr]
				} else {
					tape[target] -= tape[ptr]
				}
			}

		case ir.OpRead:
			if pendingFlush {
				if err := w.Flush(); err != nil {
					return err
				}
				pendingFlush = false
			}
			ensure(ptr)
			b, err := r.ReadByte()
			if err == io.EOF {
				tape[ptr] = C(-1)
			} else if err != nil {
				return err
			} else {
				tape[ptr] = ir.FromByte[C](b)
			}

		case ir.OpWrite:
			ensure(ptr)
			b := ir.LeastByte(tape[ptr])
			if err := w.WriteByte(b); err != nil {
				return err
			}
			pendingFlush = b != '\n'

		case ir.OpWriteStr:
			if _, err := w.Write(instr.Str); err != nil {
				return err
			}
			if len(instr.Str) > 0 {
				pendingFlush = instr.Str[len(instr.Str)-1] != '\n'
			}

		case ir.OpLoopStart:
			ensure(ptr)
			var zero C
			if tape[ptr] == zero {
				pc = instr.N
				continue
			}

		case ir.OpLoopEnd:
			pc = instr.N
			continue
		}
		pc++
	}

	if pendingFlush {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return w.Flush()
}
