package optimize_test

import (
	"testing"

	"github.com/xyproto/bf/internal/ir"
	"github.com/xyproto/bf/internal/optimize"
)

func TestSetRecognizesZeroLoop(t *testing.T) {
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushLoopEnd()

	out := optimize.Set(p)
	if out.Len() != 1 {
		t.Fatalf("expected [-] to become one Set instruction, got %d", out.Len())
	}
	instr, _ := out.Get(0)
	if instr.Op != ir.OpSet || instr.Val != 0 {
		t.Fatalf("expected Set(0), got %+v", instr)
	}
}

func TestSetRecognizesConstantAssignment(t *testing.T) {
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushLoopEnd()
	p.PushAdd(7)

	out := optimize.Set(p)
	if out.Len() != 1 {
		t.Fatalf("expected [-]+++++++ to become one Set instruction, got %d", out.Len())
	}
	instr, _ := out.Get(0)
	if instr.Op != ir.OpSet || instr.Val != 7 {
		t.Fatalf("expected Set(7), got %+v", instr)
	}
}

func TestSetLeavesOtherLoopsAlone(t *testing.T) {
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushMove(1)
	p.PushAdd(-1)
	p.PushMove(-1)
	p.PushLoopEnd()

	out := optimize.Set(p)
	if out.Len() != 5 {
		t.Fatalf("a loop with a Move inside should pass through unchanged, got %d instructions", out.Len())
	}
}
