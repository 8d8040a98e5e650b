package toolchain

import (
	"strings"

	"github.com/xyproto/env/v2"
)

// Tools is the resolved set of external programs and flags a compile
// invocation will shell out to, read from CC/ASM/LD/CFLAGS/ASMFLAGS/LDFLAGS
// (spec §6, "Env vars honored by compile").
type Tools struct {
	CC       string
	Asm      string
	Ld       string
	CFlags   []string
	AsmFlags []string
	LdFlags  []string
}

// ResolveTools reads the toolchain environment variables, applying the
// documented defaults (gcc, nasm, $CC) and space-tokenizing flag variables.
func ResolveTools() Tools {
	cc := env.Str("CC", "gcc")
	return Tools{
		CC:       cc,
		Asm:      env.Str("ASM", "nasm"),
		Ld:       env.Str("LD", cc),
		CFlags:   tokenize(env.Str("CFLAGS", "")),
		AsmFlags: tokenize(env.Str("ASMFLAGS", "")),
		LdFlags:  tokenize(env.Str("LDFLAGS", "")),
	}
}

func tokenize(s string) []string {
	return strings.Fields(s)
}
