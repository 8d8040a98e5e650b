package ir

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrLossySerialization is returned by WriteBF once the program contains
// AddTo/SubFrom: those have no single-instruction Brainfuck source form,
// so re-serialization would not round-trip (spec §8 "Round-trip").
var ErrLossySerialization = errors.New("ir: program contains add_to/sub_from, brainfuck re-serialization would be lossy")

// Dump writes an indented, human-readable instruction listing. This is one
// of the "trivial textual pretty-printers" spec.md calls out as an external
// collaborator's concern, but it still needs to exist as a direct consumer
// of the IR iteration contract.
func (p *Program[C]) Dump(w io.Writer) error {
	nesting := 0
	for _, instr := range p.instrs {
		switch instr.Op {
		case OpLoopEnd:
			nesting--
		}
		if _, err := io.WriteString(w, strings.Repeat("    ", nesting)); err != nil {
			return err
		}
		switch instr.Op {
		case OpMove:
			_, err := fmt.Fprintf(w, "move %d\n", instr.N)
			if err != nil {
				return err
			}
		case OpAdd:
			if _, err := fmt.Fprintf(w, "add %d\n", int64(instr.Val)); err != nil {
				return err
			}
		case OpSet:
			if _, err := fmt.Fprintf(w, "set %d\n", int64(instr.Val)); err != nil {
				return err
			}
		case OpAddTo:
			if _, err := fmt.Fprintf(w, "add_to %d\n", instr.N); err != nil {
				return err
			}
		case OpSubFrom:
			if _, err := fmt.Fprintf(w, "sub_from %d\n", instr.N); err != nil {
				return err
			}
		case OpRead:
			if _, err := io.WriteString(w, "read\n"); err != nil {
				return err
			}
		case OpWrite:
			if _, err := io.WriteString(w, "write\n"); err != nil {
				return err
			}
		case OpLoopStart:
			if _, err := io.WriteString(w, "loop {\n"); err != nil {
				return err
			}
			nesting++
		case OpLoopEnd:
			if _, err := io.WriteString(w, "}\n"); err != nil {
				return err
			}
		case OpWriteStr:
			if _, err := fmt.Fprintf(w, "write %q\n", instr.Str); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteBF re-serializes the program back to Brainfuck source. It returns
// ErrLossySerialization if the program has been through the add_to pass.
func (p *Program[C]) WriteBF(w io.Writer) error {
	for _, instr := range p.instrs {
		switch instr.Op {
		case OpMove:
			if err := repeatByte(w, moveByte(instr.N), absInt(instr.N)); err != nil {
				return err
			}
		case OpAdd:
			v := int64(instr.Val)
			if err := repeatByte(w, addByte(v), absInt64(v)); err != nil {
				return err
			}
		case OpSet:
			if _, err := io.WriteString(w, "[-]"); err != nil {
				return err
			}
			v := int64(instr.Val)
			if err := repeatByte(w, addByte(v), absInt64(v)); err != nil {
				return err
			}
		case OpAddTo, OpSubFrom:
			return ErrLossySerialization
		case OpRead:
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		case OpWrite:
			if _, err := io.WriteString(w, "."); err != nil {
				return err
			}
		case OpLoopStart:
			if _, err := io.WriteString(w, "["); err != nil {
				return err
			}
		case OpLoopEnd:
			if _, err := io.WriteString(w, "]"); err != nil {
				return err
			}
		case OpWriteStr:
			for _, b := range instr.Str {
				if _, err := io.WriteString(w, "[-]"); err != nil {
					return err
				}
				if err := repeatByte(w, '+', int(b)); err != nil {
					return err
				}
				if _, err := io.WriteString(w, "."); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func moveByte(n int) byte {
	if n > 0 {
		return '>'
	}
	return '<'
}

func addByte(v int64) byte {
	if v > 0 {
		return '+'
	}
	return '-'
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absInt64(n int64) int {
	if n < 0 {
		n = -n
	}
	return int(n)
}

func repeatByte(w io.Writer, b byte, count int) error {
	if count == 0 {
		return nil
	}
	buf := make([]byte, count)
	for i := range buf {
		buf[i] = b
	}
	_, err := w.Write(buf)
	return err
}
