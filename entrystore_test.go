package arx

import (
	"bytes"
	"testing"
)

// buildTree wires a TreeBuilder over a fresh entry store and adds each of
// top's entries directly under the root, mirroring what Creator.AddTree does
// (the wrapper entry itself is never recorded, only its children).
func buildTree(t *testing.T, top ...*memSource) *entryStore {
	t.Helper()
	store := newTestStore()
	b := newTreeBuilder(store)
	for _, e := range top {
		if err := b.Add(b.Root(), e, addContentNoop); err != nil {
			t.Fatalf("Add(%s): %v", e.name, err)
		}
	}
	return store
}

func TestEntryStoreSiblingContiguityAndSort(t *testing.T) {
	store := buildTree(t,
		memDir("b_dir", memFile("z.txt", "1"), memFile("a.txt", "2")),
		memDir("a_dir", memFile("only.txt", "3")),
		memFile("top.txt", "4"),
	)

	if err := store.resolveAndSort(); err != nil {
		t.Fatalf("resolveAndSort: %v", err)
	}

	// Every directory's [firstChild, firstChild+count) range has
	// parent == index(D)+1, and no entry outside it does.
	for i, e := range store.entries {
		if e.kind != DirEntryKind {
			continue
		}
		wantParent := uint64(i) + 1
		fc := e.firstChild.resolve()
		cc := e.childCount.resolve()
		for j, other := range store.entries {
			inRange := uint32(j) >= uint32(fc) && uint32(j) < uint32(fc)+uint32(cc)
			hasParent := other.parent.resolve() == wantParent
			if inRange != hasParent {
				t.Errorf("entry %d (name=%q): inRange=%v hasParent=%v (dir %d firstChild=%d count=%d)",
					j, other.name, inRange, hasParent, i, fc, cc)
			}
		}
	}

	// Every sibling range is non-decreasing in name.
	if err := store.verifySorted(); err != nil {
		t.Errorf("verifySorted: %v", err)
	}
}

func TestEntryStoreIndexStabilityUnderResort(t *testing.T) {
	store := buildTree(t,
		memDir("dir", memFile("c", "1"), memFile("b", "2"), memFile("a", "3")),
	)
	if err := store.resolveAndSort(); err != nil {
		t.Fatalf("resolveAndSort: %v", err)
	}

	// A re-sort of the finalized store is a no-op.
	before := make([]string, len(store.entries))
	for i, e := range store.entries {
		before[i] = string(e.name)
	}
	if err := store.verifySorted(); err != nil {
		t.Fatalf("verifySorted: %v", err)
	}
	after := make([]string, len(store.entries))
	for i, e := range store.entries {
		after[i] = string(e.name)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("order changed at %d: %q -> %q", i, before[i], after[i])
		}
	}
}

func TestEntryStoreNameOrderWithinDirectory(t *testing.T) {
	store := buildTree(t,
		memDir("dir", memFile("charlie", "1"), memFile("alpha", "2"), memFile("bravo", "3")),
	)
	if err := store.resolveAndSort(); err != nil {
		t.Fatalf("resolveAndSort: %v", err)
	}

	var dirIdx int = -1
	for i, e := range store.entries {
		if e.kind == DirEntryKind {
			dirIdx = i
		}
	}
	if dirIdx < 0 {
		t.Fatal("no directory entry found")
	}
	dir := store.entries[dirIdx]
	fc := dir.firstChild.resolve()
	cc := dir.childCount.resolve()

	var names []string
	for i := fc; i < fc+cc; i++ {
		names = append(names, string(store.entries[i].name))
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(names) != len(want) {
		t.Fatalf("got %d children, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("children[%d] = %q, want %q (names[] = %v)", i, names[i], want[i], names)
		}
	}
}

func TestEntryStoreSerializeRoundTrip(t *testing.T) {
	store := buildTree(t,
		memDir("dir", memFile("a.txt", "hello"), memLink("l", "a.txt")),
		memFile("root.txt", "world"),
	)
	if err := store.resolveAndSort(); err != nil {
		t.Fatalf("resolveAndSort: %v", err)
	}

	var buf bytes.Buffer
	if err := store.serialize(&buf, packOrder); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("serialize wrote nothing")
	}
}

func TestEntryStoreEmpty(t *testing.T) {
	store := newTestStore()
	if err := store.resolveAndSort(); err != nil {
		t.Fatalf("resolveAndSort on empty store: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}
