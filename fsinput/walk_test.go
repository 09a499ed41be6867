package fsinput_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-arx/arx"
	"github.com/go-arx/arx/fsinput"
)

func TestNewTreeMissingRoot(t *testing.T) {
	_, err := fsinput.NewTree(filepath.Join(t.TempDir(), "does-not-exist"), false)
	if err == nil {
		t.Fatal("NewTree(missing) = nil error, want one wrapping ErrInputNotFound")
	}
}

func TestTreeEntryWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "file.txt"), []byte("contents"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink("file.txt", filepath.Join(dir, "sub", "link")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	root, err := fsinput.NewTree(dir, false)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	if root.Kind() != arx.SourceDir {
		t.Fatalf("root.Kind() = %v, want SourceDir", root.Kind())
	}

	children, err := root.Children()
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 1 || string(children[0].Name()) != "sub" {
		t.Fatalf("children = %v, want [sub]", children)
	}

	sub := children[0]
	subChildren, err := sub.Children()
	if err != nil {
		t.Fatalf("sub.Children(): %v", err)
	}
	if len(subChildren) != 2 {
		t.Fatalf("sub has %d children, want 2 (sorted file.txt, link)", len(subChildren))
	}
	// fsinput sorts children by name.
	if string(subChildren[0].Name()) != "file.txt" || string(subChildren[1].Name()) != "link" {
		t.Errorf("sub children order = %q, %q, want file.txt, link",
			subChildren[0].Name(), subChildren[1].Name())
	}

	if subChildren[0].Kind() != arx.SourceFile {
		t.Errorf("file.txt Kind() = %v, want SourceFile", subChildren[0].Kind())
	}
	if subChildren[1].Kind() != arx.SourceLink {
		t.Errorf("link Kind() = %v, want SourceLink", subChildren[1].Kind())
	}

	target, err := subChildren[1].Target()
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	if string(target) != "file.txt" {
		t.Errorf("Target() = %q, want file.txt", target)
	}

	r, size, err := subChildren[0].Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "contents" || size != int64(len("contents")) {
		t.Errorf("content = %q size=%d, want %q size=%d", data, size, "contents", len("contents"))
	}
}

func TestTreeEntryFollowSymlink(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "real.txt"), []byte("real content"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink("real.txt", filepath.Join(dir, "link.txt")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	root, err := fsinput.NewTree(dir, true)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	children, err := root.Children()
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	var link arx.SourceEntry
	for _, c := range children {
		if string(c.Name()) == "link.txt" {
			link = c
		}
	}
	if link == nil {
		t.Fatal("link.txt not found among children")
	}
	if link.Kind() != arx.SourceFile {
		t.Errorf("followed symlink Kind() = %v, want SourceFile", link.Kind())
	}
}
