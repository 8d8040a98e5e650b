package codegen_test

import (
	"strings"
	"testing"

	"github.com/xyproto/bf/internal/cellkind"
	"github.com/xyproto/bf/internal/codegen"
	"github.com/xyproto/bf/internal/ir"
)

func TestGenerateCTrivialPureOutput(t *testing.T) {
	p := ir.New[int8]()
	p.PushWriteStr([]byte("hi"))
	desc := cellkind.Describe(cellkind.W8)
	plan := codegen.ComputePlan[int8](p, desc.Bytes)

	src, err := codegen.GenerateC[int8](p, desc, plan, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "int main(void)") {
		t.Fatalf("expected the trivial main() form, got:\n%s", src)
	}
	if strings.Contains(src, "mmap") {
		t.Fatalf("a pure-output program must not pull in the guard-page runtime, got:\n%s", src)
	}
	if !strings.Contains(src, `fwrite("hi", 2, 1, stdout);`) {
		t.Fatalf("expected the literal fwrite call, got:\n%s", src)
	}
}

func TestGenerateCFlushesWhenNoTrailingNewline(t *testing.T) {
	p := ir.New[int8]()
	p.PushWriteStr([]byte("hi"))
	desc := cellkind.Describe(cellkind.W8)
	plan := codegen.ComputePlan[int8](p, desc.Bytes)

	src, err := codegen.GenerateC[int8](p, desc, plan, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "fflush(stdout);") {
		t.Fatalf("expected an explicit fflush since the output has no trailing newline, got:\n%s", src)
	}
}

func TestGenerateCMemoryProgramIncludesRuntime(t *testing.T) {
	p := ir.New[int8]()
	p.PushAdd(3)
	p.PushLoopStart()
	p.PushAdd(-1)
	p.PushLoopEnd()
	desc := cellkind.Describe(cellkind.W8)
	plan := codegen.ComputePlan[int8](p, desc.Bytes)

	src, err := codegen.GenerateC[int8](p, desc, plan, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "void bfmain(void)") {
		t.Fatalf("expected the bfmain() entry point, got:\n%s", src)
	}
	if !strings.Contains(src, "mmap(") {
		t.Fatalf("a memory-touching program must inline the guard-page runtime, got:\n%s", src)
	}
	if !strings.Contains(src, "while (*ptr)") {
		t.Fatalf("expected a straight-line while loop translation, got:\n%s", src)
	}
	if !strings.Contains(src, "*ptr += 3;") {
		t.Fatalf("expected the Add translation, got:\n%s", src)
	}
}
