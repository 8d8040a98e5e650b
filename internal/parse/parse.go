// Package parse turns Brainfuck source text into an ir.Program. It is the
// ≈4% "hard engineering" component spec.md calls out: position tracking and
// loop-bracket matching, nothing else. Everything other than the nine
// command bytes is a comment and is skipped silently.
package parse

import (
	"github.com/xyproto/bf/internal/diag"
	"github.com/xyproto/bf/internal/ir"
)

// Parse parses src into a Program, or returns a *diag.Error describing the
// first (and only) syntax problem encountered — this parser does not
// recover from errors (spec §1 non-goal).
func Parse[C ir.Cell](src []byte) (*ir.Program[C], error) {
	prog := ir.New[C]()

	lineno, column := 1, 1
	var openLines, openCols []int // mirrors prog's loop stack 1:1, for error positions

	for _, c := range src {
		switch c {
		case '<':
			prog.PushMove(-1)
			column++
		case '>':
			prog.PushMove(1)
			column++
		case '-':
			prog.PushAdd(C(-1))
			column++
		case '+':
			prog.PushAdd(C(1))
			column++
		case '[':
			prog.PushLoopStart()
			openLines = append(openLines, lineno)
			openCols = append(openCols, column)
			column++
		case ']':
			if !prog.PushLoopEnd() {
				return nil, diag.NewUnmatchedLoopEnd(lineno, column)
			}
			openLines = openLines[:len(openLines)-1]
			openCols = openCols[:len(openCols)-1]
			column++
		case '.':
			prog.PushWrite()
			column++
		case ',':
			prog.PushRead()
			column++
		case '\n':
			lineno++
			column = 1
		default:
			column++
		}
	}

	if len(openLines) > 0 {
		return nil, diag.NewUnmatchedLoopStart(openLines[0], openCols[0])
	}

	return prog, nil
}
