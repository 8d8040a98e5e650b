// Package guardcheck preflights that the host actually supports the
// mmap/mprotect/mremap sequence the generated guard-page runtime (spec
// §4.5.3) depends on, before a `compile` invocation bothers shelling out to
// the external toolchain. Grounded in the teacher's golang.org/x/sys/unix
// use for inotify: a thin, error-checked wrapper around a handful of raw
// syscalls.
package guardcheck

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Check maps three pages, mprotects the guards PROT_NONE, grows the
// mapping by one page with mremap, and tears everything down. It reports
// the first failing syscall, or nil if the host can run the generated
// runtime's SIGSEGV dance.
func Check(pageSize int) error {
	size := pageSize * 3
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return fmt.Errorf("guardcheck: mmap: %w", err)
	}

	if err := unix.Mprotect(mem[:pageSize], unix.PROT_NONE); err != nil {
		unix.Munmap(mem)
		return fmt.Errorf("guardcheck: mprotect front guard: %w", err)
	}
	if err := unix.Mprotect(mem[size-pageSize:], unix.PROT_NONE); err != nil {
		unix.Munmap(mem)
		return fmt.Errorf("guardcheck: mprotect rear guard: %w", err)
	}

	if err := unix.Mprotect(mem[:pageSize], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		unix.Munmap(mem)
		return fmt.Errorf("guardcheck: release front guard: %w", err)
	}
	grown, err := unix.Mremap(mem, size, size+pageSize, unix.MREMAP_MAYMOVE)
	if err != nil {
		unix.Munmap(mem)
		return fmt.Errorf("guardcheck: mremap: %w", err)
	}
	unix.Munmap(grown)

	return nil
}
