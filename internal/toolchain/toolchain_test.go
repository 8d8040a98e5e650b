package toolchain

import (
	"strings"
	"testing"
)

// These exercise run()'s exit-status wrapping against /bin/true and
// /bin/false rather than a real compiler, so they don't depend on gcc/nasm
// being installed on the host running the suite.

func TestRunSucceedsOnZeroExit(t *testing.T) {
	if err := run("true"); err != nil {
		t.Fatalf("expected /bin/true to succeed, got %v", err)
	}
}

func TestRunWrapsNonzeroExit(t *testing.T) {
	err := run("false")
	if err == nil {
		t.Fatal("expected an error for a nonzero exit")
	}
	if !strings.Contains(err.Error(), "exited with status") {
		t.Fatalf("expected the exit-status message, got %v", err)
	}
}

func TestRunWrapsMissingExecutable(t *testing.T) {
	err := run("bf-toolchain-test-nonexistent-binary")
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}

func TestCompileCBuildsExpectedFlags(t *testing.T) {
	tools := Tools{CC: "true", CFlags: []string{"-DFOO"}}
	if err := tools.CompileC("in.c", "out.o", true, 2); err != nil {
		t.Fatalf("expected the stub compiler to succeed, got %v", err)
	}
}

func TestLinkUsesObjectsAndLdFlags(t *testing.T) {
	tools := Tools{Ld: "true", LdFlags: []string{"-lm"}}
	if err := tools.Link([]string{"a.o", "b.o"}, "out", false, 0); err != nil {
		t.Fatalf("expected the stub linker to succeed, got %v", err)
	}
}
