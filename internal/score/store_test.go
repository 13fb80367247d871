package score

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scores.json")
	s := NewFileStore(path)

	got, err := s.Load()
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("missing file: %v, %v", got, err)
	}

	if err := s.Save([]int{90, 50, 10}); err != nil {
		t.Fatal(err)
	}
	got, err = s.Load()
	if err != nil || !slices.Equal(got, []int{90, 50, 10}) {
		t.Fatalf("Load = %v, %v", got, err)
	}

	raw, _ := os.ReadFile(path)
	if string(raw) != "[90,50,10]" {
		t.Fatalf("file = %s", raw)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".scores-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left: %v", leftovers)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("err = %v", err)
	}
}

func TestFileStoreSaveNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := NewFileStore(path).Save(nil); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "[]" {
		t.Fatalf("file = %s", raw)
	}
}

func TestDirStorePerPlayer(t *testing.T) {
	d := NewDirStore(t.TempDir())
	a := d.For("Alice")
	if d.For("alice") != a {
		t.Fatal("same player got two stores")
	}
	if err := a.Save([]int{7}); err != nil {
		t.Fatal(err)
	}
	got, err := d.For("bob").Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("bob sees %v, %v", got, err)
	}
	if filepath.Base(a.Path()) != "alice.json" {
		t.Fatalf("path = %s", a.Path())
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"../../etc/passwd", "etcpasswd"},
		{"0xAbC_1-2", "0xabc_1-2"},
		{"", "anonymous"},
		{"///", "anonymous"},
		{strings.Repeat("a", 100), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	var m MemoryStore
	in := []int{3, 2}
	if err := m.Save(in); err != nil {
		t.Fatal(err)
	}
	in[0] = 99
	got, _ := m.Load()
	if !slices.Equal(got, []int{3, 2}) {
		t.Fatalf("Load = %v", got)
	}
}
