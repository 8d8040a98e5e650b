package optimize

import "github.com/xyproto/bf/internal/ir"

// Set recognizes the idiomatic zero-loop constant-assignment pattern
// (spec §4.3.2): LoopStart, Add(_), LoopEnd[, Add(v)] becomes Set(v) or
// Set(0).
func Set[C ir.Cell](code *ir.Program[C]) *ir.Program[C] {
	out := ir.New[C]()
	n := code.Len()
	i := 0

	for i < n {
		i0, _ := code.Get(i)
		if i0.Op == ir.OpLoopStart {
			i1, ok1 := code.Get(i + 1)
			i2, ok2 := code.Get(i + 2)
			if ok1 && i1.Op == ir.OpAdd && ok2 && i2.Op == ir.OpLoopEnd {
				if i3, ok3 := code.Get(i + 3); ok3 && i3.Op == ir.OpAdd {
					out.PushSet(i3.Val)
					i += 4
					continue
				}
				var zero C
				out.PushSet(zero)
				i += 3
				continue
			}
		}
		out.Push(i0)
		i++
	}

	return out
}
