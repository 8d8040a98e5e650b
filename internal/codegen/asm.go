package codegen

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xyproto/bf/internal/cellkind"
	"github.com/xyproto/bf/internal/ir"
)

// AsmOutput is the pair of files the assembly back-end produces: the NASM
// program body (bfmain) and its C runtime (spec §4.5.2).
type AsmOutput struct {
	Asm     string
	Runtime string
}

// GenerateAsm emits the NASM x86-64 body plus its guard-page C runtime.
// find_set_before drives three optimizations absent from the C back-end:
// AddTo/SubFrom groups fold to immediate adds when the source cell's value
// is statically known (or vanish entirely when known zero), LoopStart drops
// its entry test when the value entering the loop is known nonzero (or the
// whole loop is dropped when known zero), and LoopEnd either omits the
// backward jump (known zero, or the loop's last instruction is Set(0)) or
// makes it unconditional (known nonzero).
func GenerateAsm[C ir.Cell](p *ir.Program[C], desc cellkind.Descriptor, plan Plan, debug bool) (AsmOutput, error) {
	runtime, err := RenderRuntime(RuntimeParams{
		CellType:      desc.CType,
		PageSize:      plan.PageSize,
		Debug:         debug,
		PatchRegister: true,
	})
	if err != nil {
		return AsmOutput{}, err
	}

	strTable := map[string]int{}
	for _, instr := range iterate(p) {
		if instr.Op == ir.OpWriteStr {
			key := string(instr.Str)
			if _, ok := strTable[key]; !ok {
				strTable[key] = len(strTable)
			}
		}
	}

	var asm bytes.Buffer
	asm.WriteString("bits 64\nsection .data\n")

	keys := make([]string, 0, len(strTable))
	for k := range strTable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return strTable[keys[i]] < strTable[keys[j]] })
	for _, k := range keys {
		writeAsmDB(&asm, fmt.Sprintf("msg%d", strTable[k]), []byte(k))
	}

	asm.WriteString("section .text\n")
	asm.WriteString("extern stdout\nextern fwrite\nextern putchar\nextern getchar\nextern fflush\nextern mem\n")
	asm.WriteString("global bfmain\nbfmain:\n")
	asm.WriteString("        push rbp\n        mov  rbp, rsp\n        push r12\n")
	asm.WriteString("        mov  r12, [rel mem]\n")
	fmt.Fprintf(&asm, "        add  r12, %d                  ; ptr = mem + PAGESIZE\n", plan.PageSize)

	g := &asmGen[C]{buf: &asm, desc: desc, p: p, strTable: strTable}
	g.run()

	asm.WriteString("        pop  r12\n        mov  rsp, rbp\n        pop  rbp\n        ret\n")

	return AsmOutput{Asm: asm.String(), Runtime: runtime}, nil
}

type asmGen[C ir.Cell] struct {
	buf       *bytes.Buffer
	desc      cellkind.Descriptor
	p         *ir.Program[C]
	strTable  map[string]int
	loopCount int
	loopIDs   []int
}

func (g *asmGen[C]) run() {
	n := g.p.Len()
	i := 0
	for i < n {
		instr, _ := g.p.Get(i)
		switch instr.Op {
		case ir.OpAddTo, ir.OpSubFrom:
			j := i
			var group []ir.Instr[C]
			for j < n {
				next, _ := g.p.Get(j)
				if next.Op != ir.OpAddTo && next.Op != ir.OpSubFrom {
					break
				}
				group = append(group, next)
				j++
			}
			g.emitAddToGroup(group, i)
			i = j

		case ir.OpLoopStart:
			v, known := g.p.FindSetBefore(i)
			var zero C
			if known && v == zero {
				i = instr.N
				continue
			}
			g.emitLoopStart(i, known && v != zero)
			i++

		case ir.OpLoopEnd:
			g.emitLoopEnd(i)
			i++

		default:
			g.emitSimple(instr)
			i++
		}
	}
}

func (g *asmGen[C]) emitSimple(instr ir.Instr[C]) {
	switch instr.Op {
	case ir.OpMove:
		g.emitMove(instr.N)

	case ir.OpAdd:
		v := int64(instr.Val)
		switch {
		case v == 1:
			fmt.Fprintf(g.buf, "        inc  %s [r12]\n", g.desc.AsmPrefix)
		case v == -1:
			fmt.Fprintf(g.buf, "        dec  %s [r12]\n", g.desc.AsmPrefix)
		case v > 0:
			fmt.Fprintf(g.buf, "        add  %s [r12], %d\n", g.desc.AsmPrefix, v)
		case v < 0:
			fmt.Fprintf(g.buf, "        sub  %s [r12], %d\n", g.desc.AsmPrefix, -v)
		}

	case ir.OpSet:
		fmt.Fprintf(g.buf, "        mov  %s [r12], %d\n", g.desc.AsmPrefix, int64(instr.Val))

	case ir.OpRead:
		g.buf.WriteString("        mov  rdi, [rel stdout]\n")
		g.buf.WriteString("        call fflush\n")
		g.buf.WriteString("        call getchar                ; eax = getchar(); EOF (-1) sign-extends correctly\n")
		if g.desc.Bytes == 8 {
			g.buf.WriteString("        cdqe                          ; rax = sign-extend(eax)\n")
		}
		fmt.Fprintf(g.buf, "        mov  %s [r12], %s\n", g.desc.AsmPrefix, g.desc.AsmRegA)

	case ir.OpWrite:
		switch g.desc.Bytes {
		case 1:
			g.buf.WriteString("        movzx eax, byte [r12]\n")
		case 2:
			g.buf.WriteString("        movzx eax, word [r12]\n")
		case 4:
			g.buf.WriteString("        mov  eax, dword [r12]\n")
		case 8:
			g.buf.WriteString("        mov  rax, qword [r12]\n")
		}
		g.buf.WriteString("        mov  edi, eax             ; putchar(*ptr) uses only the low byte\n")
		g.buf.WriteString("        call putchar\n")

	case ir.OpWriteStr:
		if len(instr.Str) == 0 {
			return
		}
		if len(instr.Str) == 1 {
			fmt.Fprintf(g.buf, "        mov  edi, %d\n        call putchar\n", instr.Str[0])
			return
		}
		id := g.strTable[string(instr.Str)]
		g.buf.WriteString("        mov  rcx, [rel stdout]\n")
		fmt.Fprintf(g.buf, "        mov  edx, 1\n        mov  esi, %d\n", len(instr.Str))
		fmt.Fprintf(g.buf, "        mov  edi, msg%d\n        call fwrite\n", id)
	}
}

func (g *asmGen[C]) emitMove(off int) {
	size := g.desc.Bytes
	switch {
	case size == 1 && off == 1:
		g.buf.WriteString("        inc  r12\n")
	case size == 1 && off == -1:
		g.buf.WriteString("        dec  r12\n")
	case off > 0:
		fmt.Fprintf(g.buf, "        add  r12, %d\n", off*size)
	case off < 0:
		fmt.Fprintf(g.buf, "        sub  r12, %d\n", -off*size)
	}
}

// emitAddToGroup handles one maximal run of AddTo/SubFrom sharing the
// current cell as their source (spec §4.5.2).
func (g *asmGen[C]) emitAddToGroup(group []ir.Instr[C], firstIdx int) {
	if len(group) == 0 {
		return
	}
	v, known := g.p.FindSetBefore(firstIdx)
	var zero C
	if known && v == zero {
		return // statically zero: the whole group is a no-op
	}

	size := g.desc.Bytes
	if known {
		for _, instr := range group {
			val := int64(v)
			if instr.Op == ir.OpSubFrom {
				val = -val
			}
			g.emitOffsetOp(instr.N, size, val)
		}
		return
	}

	fmt.Fprintf(g.buf, "        mov  %s, %s [r12]\n", g.desc.AsmRegA, g.desc.AsmPrefix)

	anyNegative := false
	for _, instr := range group {
		if instr.N < 0 {
			anyNegative = true
			break
		}
	}

	var endLabel string
	if anyNegative {
		g.loopCount++
		endLabel = fmt.Sprintf("addto_%d_end", g.loopCount)
		fmt.Fprintf(g.buf, "        cmp  %s [r12], 0\n        je   %s\n", g.desc.AsmPrefix, endLabel)
	}

	for _, instr := range group {
		op := "add"
		if instr.Op == ir.OpSubFrom {
			op = "sub"
		}
		addr := offsetAddr(instr.N, size)
		fmt.Fprintf(g.buf, "        %-4s %s [r12%s], %s\n", op, g.desc.AsmPrefix, addr, g.desc.AsmRegA)
	}

	if anyNegative {
		fmt.Fprintf(g.buf, "%s:\n", endLabel)
	}
}

// emitOffsetOp emits `add/sub <prefix> [r12±off*size], |val|` for a
// statically known addend.
func (g *asmGen[C]) emitOffsetOp(off, size int, val int64) {
	op := "add"
	if val < 0 {
		op = "sub"
		val = -val
	}
	addr := offsetAddr(off, size)
	fmt.Fprintf(g.buf, "        %-4s %s [r12%s], %d\n", op, g.desc.AsmPrefix, addr, val)
}

func offsetAddr(off, size int) string {
	if off == 0 {
		return ""
	}
	bytesOff := off * size
	if bytesOff > 0 {
		return fmt.Sprintf("+%d", bytesOff)
	}
	return fmt.Sprintf("-%d", -bytesOff)
}

func (g *asmGen[C]) emitLoopStart(idx int, knownNonzero bool) {
	g.loopCount++
	id := g.loopCount
	if !knownNonzero {
		fmt.Fprintf(g.buf, "        cmp  %s [r12], 0\n        je   loop_%d_end\n", g.desc.AsmPrefix, id)
	}
	fmt.Fprintf(g.buf, "loop_%d_start:\n", id)
	g.loopIDs = append(g.loopIDs, id)
}

func (g *asmGen[C]) emitLoopEnd(endIdx int) {
	n := len(g.loopIDs)
	id := g.loopIDs[n-1]
	g.loopIDs = g.loopIDs[:n-1]

	endsWithZeroSet := false
	if prev, ok := g.p.Get(endIdx - 1); ok {
		var zero C
		endsWithZeroSet = prev.Op == ir.OpSet && prev.Val == zero
	}

	v, known := g.p.FindSetBefore(endIdx)
	var zero C
	switch {
	case endsWithZeroSet || (known && v == zero):
		// no backward branch: the loop provably does not repeat
	case known && v != zero:
		fmt.Fprintf(g.buf, "        jmp  loop_%d_start\n", id)
	default:
		fmt.Fprintf(g.buf, "        cmp  %s [r12], 0\n        jne  loop_%d_start\n", g.desc.AsmPrefix, id)
	}
	fmt.Fprintf(g.buf, "loop_%d_end:\n", id)
}
