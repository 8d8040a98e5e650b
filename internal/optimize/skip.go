package optimize

import "github.com/xyproto/bf/internal/ir"

// Skip removes stores whose effect is always overwritten before it can be
// observed (spec §4.3.6). Candidate stores are Set/Add at offset 0 and
// AddTo(o)/SubFrom(o) at offset o; each is kept unless a forward scan from
// the next instruction proves a Set/Read reaches the same tracked offset
// before any Write, AddTo/SubFrom, or unanalyzable loop could observe it.
func Skip[C ir.Cell](code *ir.Program[C]) *ir.Program[C] {
	out := ir.New[C]()
	n := code.Len()

	for i := 0; i < n; i++ {
		instr, _ := code.Get(i)
		switch instr.Op {
		case ir.OpSet, ir.OpAdd:
			if !hasSetAfter(code, 0, i+1) {
				out.Push(instr)
			}
		case ir.OpAddTo, ir.OpSubFrom:
			if !hasSetAfter(code, instr.N, i+1) {
				out.Push(instr)
			}
		default:
			out.Push(instr)
		}
	}

	return out
}

// hasSetAfter scans forward from index, tracking the pointer offset relative
// to the store's pointer position, and reports whether the store at offset
// targetOff is provably dead (always overwritten before it can be read or
// observed as output).
func hasSetAfter[C ir.Cell](code *ir.Program[C], targetOff int, index int) bool {
	currentOff := 0
	n := code.Len()

	for index < n {
		instr, _ := code.Get(index)
		index++
		switch instr.Op {
		case ir.OpSet, ir.OpRead:
			if currentOff == targetOff {
				return true
			}
		case ir.OpAddTo, ir.OpSubFrom, ir.OpWrite:
			if currentOff == targetOff {
				return false
			}
		case ir.OpAdd, ir.OpWriteStr:
			// Transparent: neither proves nor disproves deadness.
		case ir.OpMove:
			currentOff += instr.N
		case ir.OpLoopStart:
			end, ok := unchangedPtrLoopEnd(code, currentOff, index)
			if !ok {
				return false
			}
			index = end
		case ir.OpLoopEnd:
			return false
		}
	}
	return false
}

// unchangedPtrLoopEnd analyzes a nested loop body encountered mid-scan: the
// loop is transparent to the deadness analysis iff the pointer is back at
// entryOff, the offset it held on entry to this loop, by the time the
// loop's LoopEnd is reached, in which case the scan can resume just past
// the loop. This is independent of the candidate store's own offset: it
// only asks whether the loop's net pointer movement is zero. Any
// instruction inside that cannot be resolved this way (a further-nested
// loop that itself fails this test) makes the whole analysis bail
// conservatively.
func unchangedPtrLoopEnd[C ir.Cell](code *ir.Program[C], entryOff, index int) (int, bool) {
	currentOff := entryOff
	n := code.Len()
	for index < n {
		instr, _ := code.Get(index)
		index++
		switch instr.Op {
		case ir.OpSet, ir.OpRead, ir.OpAddTo, ir.OpSubFrom, ir.OpWrite, ir.OpAdd, ir.OpWriteStr:
			// Transparent within this sub-scan; only Move/LoopStart/LoopEnd matter.
		case ir.OpMove:
			currentOff += instr.N
		case ir.OpLoopStart:
			end, ok := unchangedPtrLoopEnd(code, currentOff, index)
			if !ok {
				return 0, false
			}
			index = end
		case ir.OpLoopEnd:
			if currentOff == entryOff {
				return index, true
			}
			return 0, false
		}
	}
	return 0, false
}
