package optimize

import (
	"io"

	"github.com/xyproto/bf/internal/ir"
)

// Constexpr partially evaluates the longest prefix of the program whose
// effect depends only on the initial (all-zero) tape, per spec §4.3.7.
//
// A cell becomes dirty once a Read has written it (its value can no longer
// be reasoned about statically) and clean again once a Set overwrites it.
// Reaching a Move, Add, LoopStart, or Write while the current cell is dirty
// stops evaluation outright; Read and Set never stop it, and WriteStr never
// stops it either since it carries its own literal bytes with no tape
// dependency. At the stop boundary the residual tape is materialized as
// Move+Set pairs (dirty cells keep the value their Read gave them and are
// not materialized) and the untouched tail of the input is appended verbatim.
func Constexpr[C ir.Cell](code *ir.Program[C], echo bool, stdout io.Writer) (*ir.Program[C], error) {
	acc := ir.New[C]()
	var mem []C
	var dirty []bool
	ptr := 0
	pc := 0
	accPtr := 0
	n := code.Len()

	ensure := func(i int) {
		for len(mem) <= i {
			var zero C
			mem = append(mem, zero)
			dirty = append(dirty, false)
		}
	}

	moveAccTo := func(target int) {
		if accPtr != target {
			acc.PushMove(target - accPtr)
			accPtr = target
		}
	}

loop:
	for pc < n {
		instr, _ := code.Get(pc)
		ensure(ptr)

		switch instr.Op {
		case ir.OpMove:
			if dirty[ptr] {
				break loop
			}
			newPtr := ptr + instr.N
			if newPtr < 0 {
				// The constexpr tape is not two-sided; an underflowing
				// Move cannot be represented statically, so treat it as a
				// stop boundary like a dirty-cell access.
				break loop
			}
			ptr = newPtr
			pc++

		case ir.OpAdd:
			if dirty[ptr] {
				break loop
			}
			ensure(ptr)
			mem[ptr] += instr.Val
			pc++

		case ir.OpSet:
			ensure(ptr)
			mem[ptr] = instr.Val
			dirty[ptr] = false
			pc++

		case ir.OpAddTo, ir.OpSubFrom:
			// Not evaluated statically: the driver runs add_to before
			// constexpr, so copy loops arrive here as AddTo/SubFrom and
			// evaluation stops at the first one.
			break loop

		case ir.OpRead:
			moveAccTo(ptr)
			acc.PushRead()
			dirty[ptr] = true
			pc++

		case ir.OpWrite:
			if dirty[ptr] {
				break loop
			}
			b := ir.LeastByte(mem[ptr])
			if echo {
				_, _ = stdout.Write([]byte{b})
			}
			acc.PushWriteStr([]byte{b})
			pc++

		case ir.OpWriteStr:
			if echo {
				_, _ = stdout.Write(instr.Str)
			}
			acc.PushWriteStr(instr.Str)
			pc++

		case ir.OpLoopStart:
			if dirty[ptr] {
				break loop
			}
			var zero C
			if mem[ptr] == zero {
				pc = instr.N
			} else {
				pc++
			}

		case ir.OpLoopEnd:
			pc = instr.N
		}
	}

	if pc < n {
		for i, v := range mem {
			var zero C
			if v != zero && !dirty[i] {
				moveAccTo(i)
				acc.PushSet(v)
			}
		}
		moveAccTo(ptr)

		for pc < n {
			instr, _ := code.Get(pc)
			if instr.Op == ir.OpLoopEnd {
				acc.PushLoopEnd() // false means its LoopStart was already consumed; skip silently
			} else {
				acc.Push(instr)
			}
			pc++
		}
	}

	return acc, nil
}
