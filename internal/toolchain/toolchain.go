// Package toolchain shells out to the host C compiler, assembler, and
// linker, the way the teacher tree's cffi.go builds an exec.Command argument
// slice and checks cmd.Run()'s exit status — mirrored here from
// original_source's compile_c/assemble/link (linux_x86_64.rs).
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// CompileC compiles a C source file to an object file with $CC.
func (t Tools) CompileC(source, object string, debug bool, optLevel int) error {
	args := []string{}
	if debug {
		args = append(args, "-g")
	}
	args = append(args, fmt.Sprintf("-O%d", optLevel), "-Wall", "-Wextra", "-std=gnu11", "-c", "-o", object, source)
	args = append(args, t.CFlags...)
	return run(t.CC, args...)
}

// Assemble assembles a NASM source file to an ELF64 object file with $ASM.
func (t Tools) Assemble(source, object string, debug bool, optLevel int) error {
	args := []string{}
	if debug {
		args = append(args, "-g", "-F", "dwarf")
	}
	args = append(args, "-f", "elf64", fmt.Sprintf("-O%d", optLevel), "-o", object, source)
	args = append(args, t.AsmFlags...)
	return run(t.Asm, args...)
}

// Link links object files into an executable with $LD.
func (t Tools) Link(objects []string, binary string, debug bool, optLevel int) error {
	args := []string{}
	if debug {
		args = append(args, "-g")
	}
	args = append(args, fmt.Sprintf("-O%d", optLevel), "-o", binary)
	args = append(args, objects...)
	args = append(args, t.LdFlags...)
	return run(t.Ld, args...)
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with status %d", name, exitErr.ExitCode())
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
