package guardcheck_test

import (
	"testing"

	"github.com/xyproto/bf/internal/guardcheck"
)

func TestCheckSucceedsOnALinuxHost(t *testing.T) {
	if err := guardcheck.Check(4096); err != nil {
		t.Fatalf("expected the mmap/mprotect/mremap dance to succeed on a Linux host, got %v", err)
	}
}

func TestCheckWorksAtLargerPageSizes(t *testing.T) {
	if err := guardcheck.Check(8192); err != nil {
		t.Fatalf("expected Check to succeed at an 8192-byte page size, got %v", err)
	}
}
