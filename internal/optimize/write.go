package optimize

import "github.com/xyproto/bf/internal/ir"

// Write coalesces runs of statically-known output bytes into WriteStr
// instructions (spec §4.3.4). A Set(v),Write pair starts a run; a standalone
// non-empty WriteStr may likewise absorb what follows it. The last Set of a
// run is preserved in the output (its value may be read later).
func Write[C ir.Cell](code *ir.Program[C]) *ir.Program[C] {
	out := ir.New[C]()
	n := code.Len()
	i := 0

	for i < n {
		instr, _ := code.Get(i)

		if instr.Op == ir.OpSet {
			if next, ok := code.Get(i + 1); ok && next.Op == ir.OpWrite {
				data := []byte{ir.LeastByte(instr.Val)}
				newIndex, lastVal := absorbWrites(code, i+2, instr.Val, &data)
				out.PushSet(lastVal)
				out.PushWriteStr(data)
				i = newIndex
				continue
			}
		}

		if instr.Op == ir.OpWriteStr && len(instr.Str) > 0 {
			data := append([]byte(nil), instr.Str...)
			lastVal := ir.FromByte[C](data[len(data)-1])
			newIndex, setVal := absorbWrites(code, i+1, lastVal, &data)
			for k := i + 1; k < newIndex; k++ {
				if absorbed, _ := code.Get(k); absorbed.Op == ir.OpSet {
					out.PushSet(setVal)
					break
				}
			}
			out.PushWriteStr(data)
			i = newIndex
			continue
		}

		out.Push(instr)
		i++
	}

	return out
}

// absorbWrites extends data with every Write/Set,Write/WriteStr starting at
// index, returning the index just past what it consumed and the value last
// assigned by a Set in that run (for the caller to preserve).
func absorbWrites[C ir.Cell](code *ir.Program[C], index int, lastVal C, data *[]byte) (int, C) {
	n := code.Len()
	for index < n {
		instr, _ := code.Get(index)
		if instr.Op == ir.OpSet {
			if next, ok := code.Get(index + 1); ok && next.Op == ir.OpWrite {
				lastVal = instr.Val
				*data = append(*data, ir.LeastByte(instr.Val))
				index += 2
				continue
			}
		}
		if instr.Op == ir.OpWrite {
			*data = append(*data, ir.LeastByte(lastVal))
			index++
			continue
		}
		if instr.Op == ir.OpWriteStr {
			*data = append(*data, instr.Str...)
			index++
			continue
		}
		break
	}
	return index, lastVal
}
