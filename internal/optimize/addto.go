package optimize

import (
	"sort"

	"github.com/xyproto/bf/internal/ir"
)

// AddTo recognizes copy loops (spec §4.3.3): a loop with no nested loops,
// no I/O, containing only Move and Add(±1), whose net movement is zero,
// whose current cell is decremented exactly once, and whose every other
// touched offset is touched exactly once. It becomes one AddTo/SubFrom per
// touched offset (sorted ascending) followed by Set(0).
func AddTo[C ir.Cell](code *ir.Program[C]) *ir.Program[C] {
	out := ir.New[C]()
	n := code.Len()
	i := 0

	for i < n {
		instr, _ := code.Get(i)
		if instr.Op == ir.OpLoopStart {
			if end, offsets, ok := matchCopyLoop(code, i); ok {
				sorted := make([]int, 0, len(offsets))
				for off := range offsets {
					sorted = append(sorted, off)
				}
				sort.Ints(sorted)
				for _, off := range sorted {
					if offsets[off] > 0 {
						out.PushAddTo(off)
					} else {
						out.PushSubFrom(off)
					}
				}
				var zero C
				out.PushSet(zero)
				i = end + 1
				continue
			}
		}
		out.Push(instr)
		i++
	}

	return out
}

// matchCopyLoop tests whether the loop starting at index start is a copy
// loop and, if so, returns its LoopEnd index and the set of non-zero
// offsets it touches (mapped to +1 or -1).
func matchCopyLoop[C ir.Cell](code *ir.Program[C], start int) (end int, offsets map[int]int, ok bool) {
	offset := 0
	decreased := false
	offsets = make(map[int]int)
	j := start + 1
	n := code.Len()

	for j < n {
		instr, _ := code.Get(j)
		switch instr.Op {
		case ir.OpMove:
			offset += instr.N
			j++
		case ir.OpAdd:
			v := int64(instr.Val)
			switch {
			case v == -1 && offset == 0 && !decreased:
				decreased = true
			case v == 1 && offset != 0:
				if _, touched := offsets[offset]; touched {
					return 0, nil, false
				}
				offsets[offset] = 1
			case v == -1 && offset != 0:
				if _, touched := offsets[offset]; touched {
					return 0, nil, false
				}
				offsets[offset] = -1
			default:
				return 0, nil, false
			}
			j++
		case ir.OpLoopEnd:
			if offset == 0 && decreased {
				return j, offsets, true
			}
			return 0, nil, false
		default:
			return 0, nil, false
		}
	}
	return 0, nil, false
}
