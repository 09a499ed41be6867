package fsinput_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-arx/arx"
	"github.com/go-arx/arx/fsinput"
)

func TestBuildSynthesizesAncestors(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a/b"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a/b/leaf.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root, err := fsinput.Build(dir, []string{"a/b/leaf.txt"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Walk down: root -> a (synthesized) -> b (synthesized) -> leaf.txt (real)
	a := findChild(t, root, "a")
	if a.Kind() != arx.SourceDir {
		t.Fatalf("a.Kind() = %v, want SourceDir", a.Kind())
	}
	if a.Uid() != 1000 || a.Gid() != 1000 {
		t.Errorf("synthesized dir uid/gid = %d/%d, want 1000/1000", a.Uid(), a.Gid())
	}
	if a.Mtime() != 0 {
		t.Errorf("synthesized dir mtime = %d, want 0", a.Mtime())
	}

	b := findChild(t, a, "b")
	leaf := findChild(t, b, "leaf.txt")
	if leaf.Kind() != arx.SourceFile {
		t.Fatalf("leaf.Kind() = %v, want SourceFile", leaf.Kind())
	}

	r, size, err := leaf.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer r.Close()
	if size != 2 {
		t.Errorf("size = %d, want 2", size)
	}
}

func findChild(t *testing.T, parent arx.SourceEntry, name string) arx.SourceEntry {
	t.Helper()
	children, err := parent.Children()
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	for _, c := range children {
		if string(c.Name()) == name {
			return c
		}
	}
	t.Fatalf("no child named %q among %d children", name, len(children))
	return nil
}
