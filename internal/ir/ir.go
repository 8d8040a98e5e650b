// Package ir holds the Brainfuck instruction stream: the tagged-variant
// instruction type, the Program that owns it, its structural invariants,
// and the queries (FindSetBefore chief among them) shared by the optimizer
// passes and the assembly generator.
//
// Cell width is a Go generic type parameter rather than a runtime switch,
// per the "small capability set" design note: {width is baked in by C,
// wrapping add is C's native wraparound, low-byte extraction and
// from-byte are the two free functions below}.
package ir

// Cell is the capability set a Brainfuck cell integer needs: two's
// complement wraparound arithmetic at a fixed signed width.
type Cell interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// LeastByte returns the low 8 bits of a cell value.
func LeastByte[C Cell](v C) byte {
	return byte(v)
}

// FromByte builds a cell value from a single byte (zero-extended).
func FromByte[C Cell](b byte) C {
	return C(b)
}

// Op tags the variant a Instr holds.
type Op int

const (
	OpMove Op = iota
	OpAdd
	OpSet
	OpAddTo
	OpSubFrom
	OpRead
	OpWrite
	OpLoopStart
	OpLoopEnd
	OpWriteStr
)

func (op Op) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpAdd:
		return "add"
	case OpSet:
		return "set"
	case OpAddTo:
		return "add_to"
	case OpSubFrom:
		return "sub_from"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpLoopStart:
		return "loop_start"
	case OpLoopEnd:
		return "loop_end"
	case OpWriteStr:
		return "write_str"
	default:
		return "?"
	}
}

// Instr is one IR instruction. The fields are reused across variants the
// way the original Rust enum's payloads differ per tag:
//
//   - N holds the Move/AddTo/SubFrom offset, or the LoopStart/LoopEnd index.
//   - Val holds the Add/Set operand.
//   - Str holds the WriteStr byte sequence.
type Instr[C Cell] struct {
	Op  Op
	N   int
	Val C
	Str []byte
}

func Move[C Cell](n int) Instr[C]     { return Instr[C]{Op: OpMove, N: n} }
func Add[C Cell](v C) Instr[C]        { return Instr[C]{Op: OpAdd, Val: v} }
func Set[C Cell](v C) Instr[C]        { return Instr[C]{Op: OpSet, Val: v} }
func AddTo[C Cell](n int) Instr[C]    { return Instr[C]{Op: OpAddTo, N: n} }
func SubFrom[C Cell](n int) Instr[C]  { return Instr[C]{Op: OpSubFrom, N: n} }
func Read[C Cell]() Instr[C]          { return Instr[C]{Op: OpRead} }
func Write[C Cell]() Instr[C]         { return Instr[C]{Op: OpWrite} }
func WriteStr[C Cell](b []byte) Instr[C] {
	return Instr[C]{Op: OpWriteStr, Str: b}
}

// Program is an ordered instruction stream plus, only while it is under
// construction (by the parser or by an optimizer pass rebuilding one
// instruction at a time), a stack of unresolved LoopStart indices.
type Program[C Cell] struct {
	instrs    []Instr[C]
	loopStack []int
}

// New returns an empty Program ready for construction.
func New[C Cell]() *Program[C] {
	return &Program[C]{}
}

// Len returns the instruction count.
func (p *Program[C]) Len() int { return len(p.instrs) }

// Get returns the instruction at i, or the zero value and false if i is out
// of range.
func (p *Program[C]) Get(i int) (Instr[C], bool) {
	if i < 0 || i >= len(p.instrs) {
		var zero Instr[C]
		return zero, false
	}
	return p.instrs[i], true
}

// All iterates the instruction stream in order.
func (p *Program[C]) All() func(yield func(int, Instr[C]) bool) {
	return func(yield func(int, Instr[C]) bool) {
		for i, instr := range p.instrs {
			if !yield(i, instr) {
				return
			}
		}
	}
}

// Clone makes an O(n) shallow copy: payload slices (WriteStr's Str) are
// shared, never mutated in place by any pass, so sharing is safe.
func (p *Program[C]) Clone() *Program[C] {
	out := make([]Instr[C], len(p.instrs))
	copy(out, p.instrs)
	return &Program[C]{instrs: out}
}

// OpenLoops reports how many LoopStart instructions are still unresolved.
// Used by the parser to detect EOF inside an open loop.
func (p *Program[C]) OpenLoops() int { return len(p.loopStack) }

// PushMove appends a Move(n) instruction. A zero offset is a no-op and is
// dropped silently, matching the post-fold invariant that Move(0) never
// appears; callers that need Move(0) to be visible (there are none) should
// append via Push directly.
func (p *Program[C]) PushMove(n int) {
	if n == 0 {
		return
	}
	p.instrs = append(p.instrs, Move[C](n))
}

func (p *Program[C]) PushAdd(v C) {
	var zero C
	if v == zero {
		return
	}
	p.instrs = append(p.instrs, Add(v))
}

func (p *Program[C]) PushSet(v C) {
	p.instrs = append(p.instrs, Set(v))
}

func (p *Program[C]) PushAddTo(n int) {
	if n == 0 {
		panic("ir: AddTo(0) is forbidden")
	}
	p.instrs = append(p.instrs, AddTo[C](n))
}

func (p *Program[C]) PushSubFrom(n int) {
	if n == 0 {
		panic("ir: SubFrom(0) is forbidden")
	}
	p.instrs = append(p.instrs, SubFrom[C](n))
}

func (p *Program[C]) PushRead()  { p.instrs = append(p.instrs, Read[C]()) }
func (p *Program[C]) PushWrite() { p.instrs = append(p.instrs, Write[C]()) }

func (p *Program[C]) PushWriteStr(b []byte) {
	if len(b) == 0 {
		return
	}
	p.instrs = append(p.instrs, WriteStr[C](b))
}

// PushLoopStart opens a new loop, recording the index so the matching
// PushLoopEnd can backpatch it. The index recorded is always this
// Program's own current length, never an index copied from elsewhere —
// this is what lets every optimizer pass rebuild a correct IR by replaying
// LoopStart/LoopEnd through these two methods regardless of how many
// instructions were inserted, dropped, or reordered around them.
func (p *Program[C]) PushLoopStart() {
	p.loopStack = append(p.loopStack, len(p.instrs))
	p.instrs = append(p.instrs, Instr[C]{Op: OpLoopStart, N: -1})
}

// PushLoopEnd closes the innermost open loop. It reports false, without
// modifying the Program, if there is no open loop to close — the parser
// turns that into an UnmatchedLoopEnd error, while tail-copy code in the
// constexpr pass uses it to silently drop LoopEnd instructions whose
// LoopStart was already consumed during partial evaluation.
func (p *Program[C]) PushLoopEnd() bool {
	n := len(p.loopStack)
	if n == 0 {
		return false
	}
	start := p.loopStack[n-1]
	p.loopStack = p.loopStack[:n-1]
	p.instrs = append(p.instrs, Instr[C]{Op: OpLoopEnd, N: start})
	p.instrs[start].N = len(p.instrs)
	return true
}

// Push replays a single instruction, dispatching LoopStart/LoopEnd through
// the self-renumbering stack above. It panics if a LoopEnd has no matching
// open loop, which should never happen when replaying an already-balanced
// Program; constexpr's tail copy calls PushLoopEnd directly instead of Push
// to tolerate that case.
func (p *Program[C]) Push(instr Instr[C]) {
	switch instr.Op {
	case OpMove:
		p.instrs = append(p.instrs, instr)
	case OpAdd:
		p.PushAdd(instr.Val)
	case OpSet:
		p.PushSet(instr.Val)
	case OpAddTo:
		p.PushAddTo(instr.N)
	case OpSubFrom:
		p.PushSubFrom(instr.N)
	case OpRead:
		p.PushRead()
	case OpWrite:
		p.PushWrite()
	case OpWriteStr:
		p.PushWriteStr(instr.Str)
	case OpLoopStart:
		p.PushLoopStart()
	case OpLoopEnd:
		if !p.PushLoopEnd() {
			panic("ir: unmatched loop end while replaying a program")
		}
	default:
		panic("ir: unknown op")
	}
}

// FindSetBefore walks backward from index i-1 tracking the pointer-offset
// delta accumulated by intervening Move instructions, and reports the
// statically known value of the cell that will be current at index i, if
// any. See spec §4.2.
func (p *Program[C]) FindSetBefore(i int) (val C, known bool) {
	d := 0
	for j := i - 1; j >= 0; j-- {
		instr := p.instrs[j]
		switch instr.Op {
		case OpSet:
			if d == 0 {
				return instr.Val, true
			}
		case OpLoopEnd:
			if d == 0 {
				var zero C
				return zero, true
			}
		case OpLoopStart:
			var zero C
			return zero, false
		case OpAddTo, OpSubFrom:
			var zero C
			return zero, false
		case OpAdd, OpRead:
			if d == 0 {
				var zero C
				return zero, false
			}
		case OpMove:
			d += instr.N
		case OpWrite, OpWriteStr:
			// Transparent to tape state.
		}
	}
	var zero C
	return zero, false
}
