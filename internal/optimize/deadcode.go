package optimize

import "github.com/xyproto/bf/internal/ir"

// Deadcode drops loops that are provably unreachable: Set(v), LoopStart(e)
// with v == 0 means the loop body can never execute (spec §4.3.5). The Set
// itself is kept, since later code may read the cell it zeroes.
func Deadcode[C ir.Cell](code *ir.Program[C]) *ir.Program[C] {
	out := ir.New[C]()
	n := code.Len()
	i := 0

	for i < n {
		instr, _ := code.Get(i)
		if instr.Op == ir.OpSet {
			if next, ok := code.Get(i + 1); ok && next.Op == ir.OpLoopStart {
				var zero C
				if instr.Val == zero {
					out.PushSet(instr.Val)
					i = next.N
					continue
				}
				out.PushSet(instr.Val)
				out.PushLoopStart()
				i += 2
				continue
			}
		}
		out.Push(instr)
		i++
	}

	return out
}
