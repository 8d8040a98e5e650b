package optimize

import "github.com/xyproto/bf/internal/ir"

// Fold collapses runs of same-kind arithmetic: consecutive Move/Add/Set
// instructions merge into one, and a Set is dropped entirely when
// FindSetBefore proves the cell already holds that value (spec §4.3.1).
func Fold[C ir.Cell](code *ir.Program[C]) *ir.Program[C] {
	out := ir.New[C]()
	n := code.Len()
	i := 0

	for i < n {
		instr, _ := code.Get(i)
		switch instr.Op {
		case ir.OpMove:
			sum := instr.N
			j := i + 1
			for j < n {
				next, _ := code.Get(j)
				if next.Op != ir.OpMove {
					break
				}
				sum += next.N
				j++
			}
			out.PushMove(sum)
			i = j

		case ir.OpAdd:
			sum := instr.Val
			j := i + 1
			for j < n {
				next, _ := code.Get(j)
				if next.Op != ir.OpAdd {
					break
				}
				sum += next.Val
				j++
			}
			out.PushAdd(sum)
			i = j

		case ir.OpSet:
			before, known := code.FindSetBefore(i)
			val := instr.Val
			j := i + 1
			for j < n {
				next, _ := code.Get(j)
				if next.Op != ir.OpSet {
					break
				}
				val = next.Val
				j++
			}
			if !(known && before == val) {
				out.PushSet(val)
			}
			i = j

		default:
			out.Push(instr)
			i++
		}
	}

	return out
}
