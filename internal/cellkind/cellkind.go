// Package cellkind describes the cell integer width chosen for a compile,
// the way internal/engine described target architectures in the teacher
// tree: a small enum, a String(), and a Parse function.
package cellkind

import "fmt"

// Width is the bit width of a Brainfuck cell.
type Width int

const (
	W8 Width = iota
	W16
	W32
	W64
)

func (w Width) String() string {
	switch w {
	case W8:
		return "8"
	case W16:
		return "16"
	case W32:
		return "32"
	case W64:
		return "64"
	default:
		return "unknown"
	}
}

// ParseWidth parses a -s/--cell-size value.
func ParseWidth(s string) (Width, error) {
	switch s {
	case "8":
		return W8, nil
	case "16":
		return W16, nil
	case "32":
		return W32, nil
	case "64":
		return W64, nil
	default:
		return 0, fmt.Errorf("unsupported cell size: %s (supported: 8, 16, 32, 64)", s)
	}
}

// Descriptor is everything the generator needs to know about a width without
// touching the generic Cell type parameter itself.
type Descriptor struct {
	Width      Width
	Bytes      int    // sizeof(Cell)
	CType      string // int8_t .. int64_t
	AsmPrefix  string // byte/word/dword/qword
	AsmRegA    string // al/ax/eax/rax, used to receive getchar()'s return value
	MinCell    int64  // minimum representable value, for documentation/tests
	MaxCell    int64  // maximum representable value
}

// Describe returns the Descriptor for a Width.
func Describe(w Width) Descriptor {
	switch w {
	case W8:
		return Descriptor{Width: w, Bytes: 1, CType: "int8_t", AsmPrefix: "byte", AsmRegA: "al", MinCell: -1 << 7, MaxCell: 1<<7 - 1}
	case W16:
		return Descriptor{Width: w, Bytes: 2, CType: "int16_t", AsmPrefix: "word", AsmRegA: "ax", MinCell: -1 << 15, MaxCell: 1<<15 - 1}
	case W32:
		return Descriptor{Width: w, Bytes: 4, CType: "int32_t", AsmPrefix: "dword", AsmRegA: "eax", MinCell: -1 << 31, MaxCell: 1<<31 - 1}
	case W64:
		return Descriptor{Width: w, Bytes: 8, CType: "int64_t", AsmPrefix: "qword", AsmRegA: "rax", MinCell: -1 << 63, MaxCell: 1<<63 - 1}
	default:
		panic(fmt.Sprintf("cellkind: invalid width %d", w))
	}
}
