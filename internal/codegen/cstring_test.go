package codegen

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCStringEscapesSpecialBytes(t *testing.T) {
	var buf bytes.Buffer
	writeCString(&buf, []byte("a\"b\\c\x00\t"), "")
	got := buf.String()
	if !strings.Contains(got, `\"`) || !strings.Contains(got, `\\`) || !strings.Contains(got, `\0`) || !strings.Contains(got, `\t`) {
		t.Fatalf("expected escaped special bytes in %q", got)
	}
	if !strings.HasSuffix(got, `", 7, 1, stdout);`) {
		t.Fatalf("expected a trailing fwrite length/stdout tail, got %q", got)
	}
}

func TestWriteCStringSplitsMultilineAtInteriorNewline(t *testing.T) {
	var buf bytes.Buffer
	writeCString(&buf, []byte("a\nb"), "    ")
	got := buf.String()
	if !strings.HasPrefix(got, "fwrite(\n") {
		t.Fatalf("a string with an interior newline should start a multiline fwrite(, got %q", got)
	}
}

func TestWriteCStringSingleTrailingNewlineStaysOneLine(t *testing.T) {
	var buf bytes.Buffer
	writeCString(&buf, []byte("hi\n"), "")
	got := buf.String()
	if strings.HasPrefix(got, "fwrite(\n") {
		t.Fatalf("a trailing (non-interior) newline should not trigger the multiline form, got %q", got)
	}
	if !strings.Contains(got, `\n`) {
		t.Fatalf("expected an escaped newline, got %q", got)
	}
}
