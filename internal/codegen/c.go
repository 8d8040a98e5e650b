package codegen

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xyproto/bf/internal/cellkind"
	"github.com/xyproto/bf/internal/ir"
)

// GenerateC emits a single C translation unit (spec §4.5.1): a straight-line
// translation of the IR using ptr += k;, *ptr += k;, *ptr = k;,
// *ptr = getchar();, putchar(*ptr);, while (*ptr) { … }, and fwrite(...) for
// WriteStr, with the guard-page tape runtime (§4.5.3) inlined ahead of it
// when the program actually touches memory. A pure-output program (no
// memory touched after optimization) instead gets the trivial fwrite-only
// main the preamble calls out.
func GenerateC[C ir.Cell](p *ir.Program[C], desc cellkind.Descriptor, plan Plan, debug bool) (string, error) {
	if !plan.UsesMem {
		return generateTrivialC(p)
	}

	runtime, err := RenderRuntime(RuntimeParams{
		CellType:      desc.CType,
		PageSize:      plan.PageSize,
		Debug:         debug,
		PatchRegister: false,
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(runtime)
	buf.WriteString("\nvoid bfmain(void) {\n")

	nesting := 1

	for _, instr := range iterate(p) {
		switch instr.Op {
		case ir.OpMove:
			writeIndent(&buf, nesting)
			fmt.Fprintf(&buf, "ptr += %d;\n", instr.N)

		case ir.OpAdd:
			writeIndent(&buf, nesting)
			fmt.Fprintf(&buf, "*ptr += %s;\n", formatVal(instr.Val))

		case ir.OpSet:
			writeIndent(&buf, nesting)
			fmt.Fprintf(&buf, "*ptr = %s;\n", formatVal(instr.Val))

		case ir.OpAddTo:
			writeIndent(&buf, nesting)
			fmt.Fprintf(&buf, "*(ptr + %d) += *ptr;\n", instr.N)

		case ir.OpSubFrom:
			writeIndent(&buf, nesting)
			fmt.Fprintf(&buf, "*(ptr + %d) -= *ptr;\n", instr.N)

		case ir.OpRead:
			writeIndent(&buf, nesting)
			buf.WriteString("*ptr = (CELL_T)getchar();\n")

		case ir.OpWrite:
			writeIndent(&buf, nesting)
			buf.WriteString("putchar((int)(unsigned char)*ptr);\n")

		case ir.OpLoopStart:
			writeIndent(&buf, nesting)
			buf.WriteString("while (*ptr) {\n")
			nesting++

		case ir.OpLoopEnd:
			nesting--
			writeIndent(&buf, nesting)
			buf.WriteString("}\n")

		case ir.OpWriteStr:
			if len(instr.Str) > 0 {
				writeIndent(&buf, nesting)
				writeCString(&buf, instr.Str, indentString(nesting))
				buf.WriteByte('\n')
			}
		}
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

func generateTrivialC[C ir.Cell](p *ir.Program[C]) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("#include <stdio.h>\n\nint main(void) {\n")

	pendingFlush := false
	for _, instr := range iterate(p) {
		if instr.Op == ir.OpWriteStr && len(instr.Str) > 0 {
			writeIndent(&buf, 1)
			writeCString(&buf, instr.Str, indentString(1))
			buf.WriteByte('\n')
			pendingFlush = instr.Str[len(instr.Str)-1] != '\n'
		}
	}
	if pendingFlush {
		writeIndent(&buf, 1)
		buf.WriteString("fflush(stdout);\n")
	}
	buf.WriteString("    return 0;\n}\n")
	return buf.String(), nil
}

func writeIndent(buf *bytes.Buffer, n int) {
	for i := 0; i < n; i++ {
		buf.WriteString("    ")
	}
}

func indentString(n int) string {
	s := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		s = append(s, ' ', ' ', ' ', ' ')
	}
	return string(s)
}

func formatVal[C ir.Cell](v C) string {
	return strconv.FormatInt(int64(v), 10)
}
