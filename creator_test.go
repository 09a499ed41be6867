package arx_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-arx/arx"
)

func TestNewCreatorMissingOutputParent(t *testing.T) {
	dir := t.TempDir()
	_, err := arx.NewCreator(filepath.Join(dir, "missing_dir", "test.arx"), arx.CreatorOptions{})
	if !errors.Is(err, arx.ErrOutputParentMissing) {
		t.Errorf("NewCreator error = %v, want ErrOutputParentMissing", err)
	}
}

func TestNewCreatorOutputExistsWithoutForce(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "test.arx")
	if err := os.WriteFile(archivePath, []byte("Some dummy content"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := arx.NewCreator(archivePath, arx.CreatorOptions{})
	if !errors.Is(err, arx.ErrOutputExists) {
		t.Errorf("NewCreator error = %v, want ErrOutputExists", err)
	}

	// The pre-existing file must be untouched.
	data, rerr := os.ReadFile(archivePath)
	if rerr != nil {
		t.Fatalf("ReadFile: %v", rerr)
	}
	if string(data) != "Some dummy content" {
		t.Errorf("file contents changed: %q", data)
	}
}

func TestNewCreatorOutputExistsWithForce(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "test.arx")
	if err := os.WriteFile(archivePath, []byte("Some dummy content"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := arx.NewCreator(archivePath, arx.CreatorOptions{Force: true, ConcatMode: arx.OneFile})
	if err != nil {
		t.Fatalf("NewCreator with Force: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []byte{'j', 'b', 'k', 'C', 0, 0, 0, 0, 0, 2}
	if len(data) < 10 || string(data[:10]) != string(want) {
		t.Errorf("first 10 bytes = %x, want %x", data[:10], want)
	}
}

func TestCreatorAddAfterFinalizeIsError(t *testing.T) {
	dir := t.TempDir()
	c, err := arx.NewCreator(filepath.Join(dir, "test.arx"), arx.CreatorOptions{ConcatMode: arx.OneFile})
	if err != nil {
		t.Fatalf("NewCreator: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := c.Add(nil); !errors.Is(err, arx.ErrBuilderClosed) {
		t.Errorf("Add after Finalize error = %v, want ErrBuilderClosed", err)
	}
}

func TestCreatorFinalizeTwiceIsError(t *testing.T) {
	dir := t.TempDir()
	c, err := arx.NewCreator(filepath.Join(dir, "test.arx"), arx.CreatorOptions{ConcatMode: arx.OneFile})
	if err != nil {
		t.Fatalf("NewCreator: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	if err := c.Finalize(); !errors.Is(err, arx.ErrBuilderClosed) {
		t.Errorf("second Finalize error = %v, want ErrBuilderClosed", err)
	}
}
