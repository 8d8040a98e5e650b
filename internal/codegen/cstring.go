package codegen

import (
	"bytes"
	"fmt"
)

// writeCString renders data as one or more adjacent double-quoted C string
// literals, splitting across lines at interior newlines for readability
// (ported from the original generator's write_str procedure: a byte-by-byte
// state machine, not a single escape pass, because a literal newline both
// closes the current quoted chunk and starts an indented continuation).
func writeCString(buf *bytes.Buffer, data []byte, indent string) {
	multiline := false
	if pos := bytes.IndexByte(data, '\n'); pos >= 0 && pos < len(data)-1 {
		multiline = true
	}

	if multiline {
		buf.WriteString("fwrite(\n")
		buf.WriteString(indent)
		buf.WriteByte('\t')
		buf.WriteByte('"')
	} else {
		buf.WriteString("fwrite(\"")
	}

	for _, c := range data {
		switch {
		case c == '\\' || c == '"':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c == '\n':
			if multiline {
				buf.WriteString("\\n\"\n")
				buf.WriteString(indent)
				buf.WriteByte('\t')
				buf.WriteByte('"')
			} else {
				buf.WriteString("\\n")
			}
		case c == 0:
			buf.WriteString("\\0")
		case c == '\r':
			buf.WriteString("\\r")
		case c == '\t':
			buf.WriteString("\\t")
		case c == 11:
			buf.WriteString("\\v")
		case c == 8:
			buf.WriteString("\\b")
		case c >= 32 && c <= 126:
			buf.WriteByte(c)
		default:
			fmt.Fprintf(buf, "\\x%02x", c)
		}
	}

	fmt.Fprintf(buf, "\", %d, 1, stdout);", len(data))
}
