// Package codegen turns an optimized IR into either a single C translation
// unit or a NASM x86-64 assembly body plus its C runtime, per spec §4.5.
package codegen

import "github.com/xyproto/bf/internal/ir"

// Plan is the shared preamble both back-ends compute by scanning the
// program once before emitting any code (spec §4.5).
type Plan struct {
	// M is the worst-case absolute pointer offset reached within any single
	// maximal run of Move instructions (and any AddTo/SubFrom target
	// computed from one), matching the original generator's segment-local
	// measure rather than a whole-program cumulative one.
	M int
	// PageSize is the tape data-page size: ceil(M*cellBytes/4096)*4096,
	// minimum 4096.
	PageSize int
	// UsesMem is false iff the program is pure output: only WriteStr/Write
	// with statically-known content survives optimization.
	UsesMem bool
}

// ComputePlan scans p once to produce a Plan. cellBytes is the width of C in
// bytes (cellkind.Descriptor.Bytes).
func ComputePlan[C ir.Cell](p *ir.Program[C], cellBytes int) Plan {
	minMove, maxMove, curMove := 0, 0, 0
	lastWasMove := false
	usesMem := false

	track := func(off int) {
		if off > maxMove {
			maxMove = off
		}
		if off < minMove {
			minMove = off
		}
	}

	for _, instr := range iterate(p) {
		switch instr.Op {
		case ir.OpMove:
			if lastWasMove {
				curMove += instr.N
			} else {
				curMove = instr.N
				lastWasMove = true
			}
			track(curMove)

		case ir.OpAddTo, ir.OpSubFrom:
			usesMem = true
			track(curMove + instr.N)
			lastWasMove = false

		case ir.OpWriteStr:
			lastWasMove = false

		default:
			usesMem = true
			lastWasMove = false
		}
	}

	m := maxMove
	if -minMove > m {
		m = -minMove
	}

	pageSize := 4096
	if need := m * cellBytes; need > 0 {
		pageSize = ((need + 4095) / 4096) * 4096
		if pageSize < 4096 {
			pageSize = 4096
		}
	}

	return Plan{M: m, PageSize: pageSize, UsesMem: usesMem}
}

// iterate collects a program's instructions into a slice; small helper so
// callers here can range without repeating the Get/Len dance.
func iterate[C ir.Cell](p *ir.Program[C]) []ir.Instr[C] {
	out := make([]ir.Instr[C], 0, p.Len())
	for _, instr := range p.All() {
		out = append(out, instr)
	}
	return out
}
