package optimize_test

import (
	"bytes"
	"testing"

	"github.com/xyproto/bf/internal/ir"
	"github.com/xyproto/bf/internal/optimize"
)

func TestConstexprEvaluatesFullyStaticProgram(t *testing.T) {
	// Set(72), Write, Set(105), Write — "Hi" — nothing reads input, so the
	// whole program is static and becomes one write_str per Write (merging
	// them is left to the write pass).
	p := ir.New[int8]()
	p.PushSet(72)
	p.PushWrite()
	p.PushSet(105)
	p.PushWrite()

	out, err := optimize.Constexpr(p, false, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected two write_str, got %d instructions", out.Len())
	}
	w0, _ := out.Get(0)
	if w0.Op != ir.OpWriteStr || string(w0.Str) != "H" {
		t.Fatalf("expected write_str(\"H\"), got %+v", w0)
	}
	w1, _ := out.Get(1)
	if w1.Op != ir.OpWriteStr || string(w1.Str) != "i" {
		t.Fatalf("expected write_str(\"i\"), got %+v", w1)
	}
}

func TestConstexprEchoesWhenRequested(t *testing.T) {
	p := ir.New[int8]()
	p.PushSet(65)
	p.PushWrite()

	var buf bytes.Buffer
	_, err := optimize.Constexpr(p, true, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "A" {
		t.Fatalf("expected the echoed byte 'A', got %q", buf.String())
	}
}

func TestConstexprStopsOnReadDependentMove(t *testing.T) {
	// Read makes the current cell dirty; a subsequent Move while dirty
	// halts static evaluation, leaving a Read in the output followed by the
	// untouched tail appended verbatim.
	p := ir.New[int8]()
	p.PushRead()
	p.PushMove(1)
	p.PushWrite()

	out, err := optimize.Constexpr(p, false, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	foundRead := false
	foundMove := false
	for _, instr := range collect(out) {
		if instr.Op == ir.OpRead {
			foundRead = true
		}
		if instr.Op == ir.OpMove {
			foundMove = true
		}
	}
	if !foundRead || !foundMove {
		t.Fatalf("expected the Read and the halting Move to both survive in the tail, got %+v", collect(out))
	}
}

func TestConstexprMaterializesResidualTape(t *testing.T) {
	// Set the cell at offset 2, then Read (halts nothing by itself, but the
	// subsequent Write while dirty stops evaluation) — the residual nonzero
	// cells must be materialized as Move+Set before the tail is appended.
	p := ir.New[int8]()
	p.PushMove(2)
	p.PushSet(9)
	p.PushMove(-2)
	p.PushRead()
	p.PushWrite() // current cell (index 0) is dirty from the Read: halts here

	out, err := optimize.Constexpr(p, false, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	foundSetNine := false
	for _, instr := range collect(out) {
		if instr.Op == ir.OpSet && instr.Val == 9 {
			foundSetNine = true
		}
	}
	if !foundSetNine {
		t.Fatalf("expected the residual cell at offset 2 (value 9) to be materialized, got %+v", collect(out))
	}
}

func TestConstexprDropsUnmatchedTailLoopEnd(t *testing.T) {
	// The loop is entered statically (mem[0] is provably 1), so its
	// LoopStart is never copied into the accumulator — the interpreter just
	// advances pc into the body. The AddTo inside halts evaluation
	// immediately, so the tail copy that follows hits this loop's LoopEnd
	// with no corresponding LoopStart ever pushed to acc; PushLoopEnd must
	// silently report false rather than panicking.
	p := ir.New[int8]()
	p.PushSet(1)
	p.PushLoopStart()
	p.PushAddTo(1)
	p.PushAdd(-1)
	p.PushLoopEnd()

	out, err := optimize.Constexpr(p, false, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := out.CheckInvariants(false); err != nil {
		t.Fatalf("CheckInvariants on constexpr output: %v", err)
	}
}

func collect[C ir.Cell](p *ir.Program[C]) []ir.Instr[C] {
	out := make([]ir.Instr[C], 0, p.Len())
	for _, instr := range p.All() {
		out = append(out, instr)
	}
	return out
}
