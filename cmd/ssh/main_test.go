package main

import (
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	wallet := "0x" + strings.Repeat("ab", 18) + "cdef"
	tests := []struct{ in, want string }{
		{"alice", "alice"},
		{"", "anonymous"},
		{wallet, "0xabab..cdef"},
		{strings.Repeat("z", 30), strings.Repeat("z", 16)},
	}
	for _, tt := range tests {
		if got := displayName(tt.in); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSizeTracker(t *testing.T) {
	s := newSizeTracker(80, 24)
	s.update(120, 40)
	w, h, err := s.getSize()
	if err != nil || w != 120 || h != 40 {
		t.Fatalf("getSize = %d, %d, %v", w, h, err)
	}
}
