package optimize_test

import (
	"testing"

	"github.com/xyproto/bf/internal/ir"
	"github.com/xyproto/bf/internal/optimize"
)

func TestAddToRecognizesCopyLoop(t *testing.T) {
	// [->+<]  — move one value to the next cell, zeroing the source.
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushMove(1)
	p.PushAdd(1)
	p.PushMove(-1)
	p.PushLoopEnd()

	out := optimize.AddTo(p)
	if out.Len() != 2 {
		t.Fatalf("expected [add_to(1), set(0)], got %d instructions", out.Len())
	}
	first, _ := out.Get(0)
	if first.Op != ir.OpAddTo || first.N != 1 {
		t.Fatalf("expected AddTo(1), got %+v", first)
	}
	second, _ := out.Get(1)
	if second.Op != ir.OpSet || second.Val != 0 {
		t.Fatalf("expected Set(0), got %+v", second)
	}
}

func TestAddToRecognizesFanOutToMultipleOffsets(t *testing.T) {
	// [->+>+<<]
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushMove(1)
	p.PushAdd(1)
	p.PushMove(1)
	p.PushAdd(1)
	p.PushMove(-2)
	p.PushLoopEnd()

	out := optimize.AddTo(p)
	if out.Len() != 3 {
		t.Fatalf("expected two add_to plus set(0), got %d instructions", out.Len())
	}
	a, _ := out.Get(0)
	b, _ := out.Get(1)
	if a.N != 1 || b.N != 2 {
		t.Fatalf("expected offsets sorted ascending (1, 2), got (%d, %d)", a.N, b.N)
	}
}

func TestAddToRecognizesSubFrom(t *testing.T) {
	// [->-<]
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushMove(1)
	p.PushAdd(-1)
	p.PushMove(-1)
	p.PushLoopEnd()

	out := optimize.AddTo(p)
	first, _ := out.Get(0)
	if first.Op != ir.OpSubFrom || first.N != 1 {
		t.Fatalf("expected SubFrom(1), got %+v", first)
	}
}

func TestAddToRejectsLoopWithIO(t *testing.T) {
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushWrite()
	p.PushLoopEnd()

	out := optimize.AddTo(p)
	if out.Len() != 4 {
		t.Fatalf("a loop containing I/O is not a copy loop and must pass through, got %d instructions", out.Len())
	}
}

func TestAddToRejectsDoubleTouchedOffset(t *testing.T) {
	// [->+>-<<] touches offset 1 with +1 then later the same offset again
	// is not exercised here; instead construct a loop that touches offset 1
	// twice, which is rejected.
	p := ir.New[int8]()
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushMove(1)
	p.PushAdd(1)
	p.PushAdd(1) // two Add(1) at the same offset: after folding would merge,
	// but pre-fold this hits the "already touched" rejection in matchCopyLoop.
	p.PushMove(-1)
	p.PushLoopEnd()

	out := optimize.AddTo(p)
	if out.Len() == 2 {
		t.Fatal("a loop touching the same offset twice is not a copy loop and must not become add_to")
	}
}
