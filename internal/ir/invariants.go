package ir

import "fmt"

// CheckInvariants validates the structural invariants spec'd to hold after
// parse and after every optimization pass (spec §3, §8 invariant 1-2).
// requireFolded additionally asserts the stronger post-fold invariants
// (no Move(0)/Add(0), no adjacent mergeable runs); pre-fold IR fails those
// on purpose (e.g. right after the parser) so callers only request them
// once fold has actually run.
func (p *Program[C]) CheckInvariants(requireFolded bool) error {
	for i, instr := range p.instrs {
		switch instr.Op {
		case OpLoopStart:
			end := instr.N
			if end <= i || end > len(p.instrs) {
				return fmt.Errorf("ir: loop_start at %d has out-of-range end %d", i, end)
			}
			endInstr := p.instrs[end-1]
			if endInstr.Op != OpLoopEnd || endInstr.N != i {
				return fmt.Errorf("ir: loop_start at %d does not pair with loop_end at %d", i, end-1)
			}
		case OpLoopEnd:
			start := instr.N
			if start < 0 || start >= i {
				return fmt.Errorf("ir: loop_end at %d has out-of-range start %d", i, start)
			}
			startInstr := p.instrs[start]
			if startInstr.Op != OpLoopStart || startInstr.N != i+1 {
				return fmt.Errorf("ir: loop_end at %d does not pair with loop_start at %d", i, start)
			}
		case OpAddTo, OpSubFrom:
			if instr.N == 0 {
				return fmt.Errorf("ir: %s(0) at %d is forbidden", instr.Op, i)
			}
		case OpWriteStr:
			if len(instr.Str) == 0 {
				return fmt.Errorf("ir: empty write_str at %d is forbidden", i)
			}
		}

		if requireFolded {
			var zero C
			switch instr.Op {
			case OpMove:
				if instr.N == 0 {
					return fmt.Errorf("ir: move(0) at %d survived fold", i)
				}
			case OpAdd:
				if instr.Val == zero {
					return fmt.Errorf("ir: add(0) at %d survived fold", i)
				}
			}
			if i+1 < len(p.instrs) {
				next := p.instrs[i+1]
				if instr.Op == next.Op && (instr.Op == OpMove || instr.Op == OpAdd || instr.Op == OpSet) {
					return fmt.Errorf("ir: adjacent %s runs at %d,%d survived fold", instr.Op, i, i+1)
				}
			}
		}
	}
	if len(p.loopStack) != 0 {
		return fmt.Errorf("ir: %d unclosed loop(s) remain", len(p.loopStack))
	}
	return nil
}
