package optimize_test

import (
	"bytes"
	"testing"

	"github.com/xyproto/bf/internal/ir"
	"github.com/xyproto/bf/internal/optimize"
)

func TestRunNoneIsACleanClone(t *testing.T) {
	p := ir.New[int8]()
	p.Push(ir.Move[int8](1))
	p.Push(ir.Move[int8](1))

	out, err := optimize.Run(p, optimize.None(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != p.Len() {
		t.Fatalf("None() should pass the program through unmerged, got %d want %d", out.Len(), p.Len())
	}
}

func TestRunAllProducesFoldedInvariants(t *testing.T) {
	p := ir.New[int8]()
	p.PushMove(1)
	p.PushMove(1)
	p.PushAdd(1)
	p.PushAdd(1)
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushLoopEnd()
	p.PushWrite()

	out, err := optimize.Run(p, optimize.All(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := out.CheckInvariants(true); err != nil {
		t.Fatalf("optimize.All() output should satisfy the folded invariants: %v", err)
	}
}

func TestRunConstexprThenFoldConverges(t *testing.T) {
	p := ir.New[int8]()
	p.PushSet(65)
	p.PushWrite()
	p.PushSet(66)
	p.PushWrite()

	opts := optimize.All()
	out, err := optimize.Run(p, opts, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("a fully static program should collapse to a single write_str, got %d instructions", out.Len())
	}
}

// semantics runs a program to terminating completion, byte-budget bounded,
// against a small in-test tape interpreter independent of internal/interp —
// used only to cross-check that optimization never changes observable
// output for small terminating programs (spec §8 invariant 3).
func semantics(t *testing.T, p *ir.Program[int8], in string) string {
	t.Helper()
	var out bytes.Buffer
	tape := make([]int8, 64)
	ptr := 16
	reader := bytes.NewReader([]byte(in))
	steps := 0
	const maxSteps = 100000

	var run func(i, end int) int
	run = func(i, end int) int {
		for i < end {
			steps++
			if steps > maxSteps {
				t.Fatal("program did not terminate within the step budget")
			}
			instr, _ := p.Get(i)
			switch instr.Op {
			case ir.OpMove:
				ptr += instr.N
			case ir.OpAdd:
				tape[ptr] += instr.Val
			case ir.OpSet:
				tape[ptr] = instr.Val
			case ir.OpAddTo:
				tape[ptr+instr.N] += tape[ptr]
			case ir.OpSubFrom:
				tape[ptr+instr.N] -= tape[ptr]
			case ir.OpRead:
				b, err := reader.ReadByte()
				if err != nil {
					tape[ptr] = -1
				} else {
					tape[ptr] = int8(b)
				}
			case ir.OpWrite:
				out.WriteByte(byte(tape[ptr]))
			case ir.OpWriteStr:
				out.Write(instr.Str)
			case ir.OpLoopStart:
				if tape[ptr] == 0 {
					i = instr.N
					continue
				}
			case ir.OpLoopEnd:
				if tape[ptr] != 0 {
					i = instr.N
					continue
				}
			}
			i++
		}
		return i
	}
	run(0, p.Len())
	return out.String()
}

func TestOptimizationPreservesObservableOutput(t *testing.T) {
	// A short, terminating, input-independent program: increment a cell to
	// 3, copy it into two neighbors via a copy loop, print all three as
	// characters.
	src := "+++[->+>+<<]>.>.<<."

	parseSrc := func(s string) *ir.Program[int8] {
		p := ir.New[int8]()
		for _, c := range []byte(s) {
			switch c {
			case '<':
				p.PushMove(-1)
			case '>':
				p.PushMove(1)
			case '-':
				p.PushAdd(-1)
			case '+':
				p.PushAdd(1)
			case '.':
				p.PushWrite()
			case ',':
				p.PushRead()
			case '[':
				p.PushLoopStart()
			case ']':
				p.PushLoopEnd()
			}
		}
		return p
	}

	baseline := semantics(t, parseSrc(src), "")

	for _, opts := range []optimize.Options{optimize.None(), optimize.All()} {
		p := parseSrc(src)
		out, err := optimize.Run(p, opts, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		got := semantics(t, out, "")
		if got != baseline {
			t.Fatalf("optimized output %q differs from baseline %q", got, baseline)
		}
	}
}
