package codegen

import (
	"strings"
	"text/template"
)

// RuntimeParams parameterizes the guard-page tape runtime (spec §4.5.3),
// the idiomatic Go analogue of the original generator's raw
// write!(r##"..."##, ...) string literals: a small struct executed against
// a text/template instead of interpolating a giant raw string by hand.
type RuntimeParams struct {
	CellType string // e.g. "int32_t"
	PageSize int
	Debug    bool
	// PatchRegister selects the assembly back-end's variant: the SIGSEGV
	// handler relocates the tape pointer by patching the R12 general
	// register through ucontext_t, since bfmain keeps the tape pointer
	// live in r12 for the whole program body. When false (the C back-end),
	// the tape pointer is an ordinary global the handler can reassign
	// directly; "the handler simply unblocks the faulting access."
	PatchRegister bool
}

var runtimeTemplate = template.Must(template.New("runtime").Parse(`#define _GNU_SOURCE

#include <stdio.h>
#include <stdlib.h>
#include <sys/mman.h>
#include <inttypes.h>
#include <signal.h>
#include <string.h>
#include <unistd.h>
#include <ucontext.h>

#define PAGESIZE {{.PageSize}}
#define CELL_T {{.CellType}}

#ifndef __linux__
#   error operating system currently not supported
#endif

volatile CELL_T* mem = NULL;
volatile size_t mem_size = 0;
{{if not .PatchRegister}}volatile CELL_T* ptr = NULL;
{{end}}
struct sigaction segv_action;

{{if .PatchRegister}}void bfmain(void);
{{else}}void bfmain(void);
{{end}}
{{if .Debug}}
// callable from a debugger to print a readable tape summary
void dbg(void) {
    fprintf(stderr, "mem = [");
    const size_t start = PAGESIZE / sizeof(CELL_T);
    const size_t end = (mem_size - PAGESIZE) / sizeof(CELL_T);
    for (size_t i = start; i < end;) {
        CELL_T val = mem[i];
        if (i != start) {
            fprintf(stderr, ", ");
        }
{{if .PatchRegister}}        if (0) {
            ++i;
            continue;
        }
{{else}}        if (mem + i == ptr) {
            fprintf(stderr, ">>%jd<<", (intmax_t)val);
            ++i;
            continue;
        }
{{end}}
        size_t count = 1;
        for (size_t j = i + 1; j < end && mem[j] == val; ++j) {
            ++count;
        }
        if (count > 3) {
            fprintf(stderr, "%jd... x%zu", (intmax_t)val, count);
            i += count;
        } else {
            fprintf(stderr, "%jd", (intmax_t)val);
            ++i;
        }
    }
    fprintf(stderr, "]\n");
}

void debug_prompt(void) {
    fprintf(stderr, "(bf-debug) ");
    int c = getchar();
    while (c != EOF && c != 'q' && c != 'c') {
        c = getchar();
    }
    if (c == 'q') {
        exit(1);
    }
}
{{end}}

void memmng(int signum, siginfo_t *info, void *vctx) {
    (void)signum;

    void *addr = info->si_addr;
{{if .PatchRegister}}    ucontext_t* ctx = (ucontext_t*)vctx;
{{else}}    (void)vctx;
{{end}}

    if (!((addr >= (void*)mem && addr < (void*)mem + PAGESIZE) ||
          (addr >= (void*)mem + (mem_size - PAGESIZE) && addr < (void*)mem + mem_size))) {
        fprintf(stderr,
            "unhandled segmentation fault: pagesize = %zu, addr = %p (offset %td), mem = %p ... %p (size %zu)\n",
            (size_t)PAGESIZE, addr, (char*)addr - (char*)mem,
            (void*)mem, (void*)mem + mem_size, mem_size);
        fflush(stderr);
        abort();
    }

    if (SIZE_MAX - PAGESIZE < mem_size) {
        fprintf(stderr, "out of address space\n");
        fflush(stderr);
        abort();
    }

    const size_t new_size = mem_size + PAGESIZE;
    if (mprotect((void*)mem, PAGESIZE, PROT_READ | PROT_WRITE) != 0) {
        perror("release guard before page protection");
        abort();
    }
    if (mprotect((void*)mem + (mem_size - PAGESIZE), PAGESIZE, PROT_READ | PROT_WRITE) != 0) {
        perror("release guard after page protection");
        abort();
    }

    void *new_mem = mremap((void*)mem, mem_size, new_size, MREMAP_MAYMOVE);
    if (new_mem == MAP_FAILED) {
        perror("mremap");
        abort();
    }

    if (mprotect(new_mem, PAGESIZE, PROT_NONE) != 0) {
        perror("mprotect guard before");
        abort();
    }
    if (mprotect(new_mem + (new_size - PAGESIZE), PAGESIZE, PROT_NONE) != 0) {
        perror("mprotect guard after");
        abort();
    }

{{if .PatchRegister}}#ifdef __x86_64__
    intptr_t patched = (intptr_t)ctx->uc_mcontext.gregs[REG_R12];
#else
#   error architecture currently not supported
#endif
{{else}}    void *old_mem = (void*)mem;
    void *patched = (void*)ptr;
{{end}}
    if (addr < (void*)mem + PAGESIZE) {
        // underflow: shift existing data one page to the right and
        // zero the newly introduced interior page
        memmove(new_mem + PAGESIZE * 2, new_mem + PAGESIZE, mem_size - PAGESIZE * 2);
        memset(new_mem + PAGESIZE, 0, PAGESIZE);
{{if .PatchRegister}}        patched += PAGESIZE;
{{else}}        patched = (char*)patched + PAGESIZE;
{{end}}
    }

{{if .PatchRegister}}    patched = (intptr_t)new_mem + (patched - (intptr_t)mem);
#ifdef __x86_64__
    ctx->uc_mcontext.gregs[REG_R12] = patched;
#else
#   error architecture currently not supported
#endif
{{else}}    patched = (char*)new_mem + ((char*)patched - (char*)old_mem);
    ptr = (volatile CELL_T*)patched;
{{end}}

    mem = new_mem;
    mem_size = new_size;
}

int main(void) {
    memset(&segv_action, 0, sizeof(struct sigaction));
    segv_action.sa_flags = SA_SIGINFO;
    segv_action.sa_sigaction = memmng;
    if (sigaction(SIGSEGV, &segv_action, NULL) == -1) {
        perror("sigaction");
        return EXIT_FAILURE;
    }

    mem_size = PAGESIZE * 3;
    mem = mmap(NULL, mem_size, PROT_READ | PROT_WRITE, MAP_PRIVATE | MAP_ANONYMOUS, -1, 0);
    if (mem == MAP_FAILED) {
        perror("mmap");
        return EXIT_FAILURE;
    }

    if (mprotect((void*)mem, PAGESIZE, PROT_NONE) != 0) {
        perror("mprotect guard before");
        return EXIT_FAILURE;
    }
    if (mprotect((void*)mem + (mem_size - PAGESIZE), PAGESIZE, PROT_NONE) != 0) {
        perror("mprotect guard after");
        return EXIT_FAILURE;
    }
{{if .Debug}}
    struct sigaction int_action;
    memset(&int_action, 0, sizeof(int_action));
    int_action.sa_handler = (void (*)(int))debug_prompt;
    sigaction(SIGINT, &int_action, NULL);
{{end}}
{{if not .PatchRegister}}
    ptr = mem + PAGESIZE / sizeof(CELL_T);
{{end}}
    bfmain();

    return 0;
}
`))

// RenderRuntime executes the guard-page runtime template.
func RenderRuntime(p RuntimeParams) (string, error) {
	var sb strings.Builder
	if err := runtimeTemplate.Execute(&sb, p); err != nil {
		return "", err
	}
	return sb.String(), nil
}
