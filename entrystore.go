package arx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// entry is one record of the entry store: the common property set plus a
// tagged union of variant properties. parent, firstChild and childCount
// are u64Field values: the tree builder records parent as an append-order
// index, and resolveAndSort rewrites parent and fills firstChild and
// childCount for the final order, before any byte of the store is written.
type entry struct {
	kind EntryKind
	name []byte

	parent u64Field // 1-based index of the parent Directory entry, 0 = root

	owner, group, rights, mtime uint64

	// Directory variant
	firstChild u64Field
	childCount u64Field

	// File variant
	contentPack uint16
	contentID   uint32
	size        uint64

	// Link variant
	target []byte

	// oldIndex is the index assigned at add_entry time (append order). It
	// never changes and identifies the entry across the rounds of
	// resolveAndSort; it is NOT the final, post-sort index.
	oldIndex uint32
}

// entryStore is the append-only, sortable table of entry records.
type entryStore struct {
	names   *valueStore
	targets *valueStore
	entries []*entry
}

func newEntryStore(names, targets *valueStore) *entryStore {
	return &entryStore{names: names, targets: targets}
}

// addEntry assigns the entry the next append-order index and returns it.
func (s *entryStore) addEntry(e *entry) uint32 {
	idx := uint32(len(s.entries))
	e.oldIndex = idx
	s.entries = append(s.entries, e)
	return idx
}

func (s *entryStore) Len() int {
	return len(s.entries)
}

// sortKey is the (parent, name) pair entries are ordered by within any
// sibling range.
type sortKey struct {
	parent uint64
	name   []byte
}

func lessKey(a, b sortKey) bool {
	if a.parent != b.parent {
		return a.parent < b.parent
	}
	return bytes.Compare(a.name, b.name) < 0
}

// resolveAndSort resolves every deferred field and produces the final,
// sibling-contiguous, (parent,name) sorted entry order.
//
// Resolving parent while sorting is a fixed point: parent values name
// *other* entries by their pre-sort index, and sorting permutes indices, so
// a single sort-then-rewrite pass is not guaranteed to leave the table
// sorted by its own rewritten keys. Because every directory is appended to
// the store before any of its descendants (treebuilder.go inserts a
// directory's own entry before recursing), repeatedly sorting and rewriting
// parent references converges in at most depth-of-tree iterations. Each
// round either leaves the order unchanged (converged) or moves at least one
// more entry into its final (parent,name) position; with len(entries)
// entries there are at most that many parent levels, so the loop is capped
// accordingly and a failure to converge indicates the input violated the
// "directory added before its children" precondition (schema violation).
func (s *entryStore) resolveAndSort() error {
	for _, e := range s.entries {
		e.parent.resolve()
	}

	order := make([]*entry, len(s.entries))
	copy(order, s.entries)

	maxIterations := len(order) + 2
	for iter := 0; ; iter++ {
		if iter > maxIterations {
			return fmt.Errorf("%w: parent references did not converge after %d passes (directory added after a child referencing it?)", ErrSchemaViolation, maxIterations)
		}

		// A parent value v (1-based) names the directory currently at
		// position v-1 in `order`; capture that mapping before sorting so
		// references can be rewritten to match wherever that directory
		// lands this round.
		byOldPos := make([]*entry, len(order))
		copy(byOldPos, order)

		keys := make([]sortKey, len(order))
		for i, e := range order {
			keys[i] = sortKey{parent: e.parent.resolve(), name: e.name}
		}

		sorted := make([]int, len(order))
		for i := range sorted {
			sorted[i] = i
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			return lessKey(keys[sorted[i]], keys[sorted[j]])
		})

		converged := true
		for newPos, oldPos := range sorted {
			if newPos != oldPos {
				converged = false
				break
			}
		}

		newOrder := make([]*entry, len(order))
		for newPos, oldPos := range sorted {
			newOrder[newPos] = order[oldPos]
		}
		order = newOrder

		if converged {
			break
		}

		// oldIndex (pre-round append order) -> new position, used to rewrite
		// parent references that name an entry by its pre-round position.
		posAfter := make(map[uint32]uint32, len(order))
		for newPos, e := range order {
			posAfter[e.oldIndex] = uint32(newPos)
		}

		for _, e := range order {
			p := e.parent.resolve()
			if p == 0 {
				continue
			}
			target := byOldPos[p-1]
			e.parent = fixedU64(uint64(posAfter[target.oldIndex]) + 1)
		}
	}

	s.entries = order

	// Sibling contiguity is now true; fill first_child/child_count for every
	// directory with a single linear grouping pass, resolved here rather
	// than via a remapped scalar - see DESIGN.md for why.
	childCounts := make(map[uint64]uint32)
	childFirst := make(map[uint64]uint32)
	for i, e := range order {
		p := e.parent.resolve()
		if p == 0 {
			continue
		}
		if _, ok := childFirst[p]; !ok {
			childFirst[p] = uint32(i)
		}
		childCounts[p]++
	}
	for i, e := range order {
		if e.kind != DirEntryKind {
			continue
		}
		key := uint64(i) + 1
		e.firstChild = fixedU64(uint64(childFirst[key]))
		e.childCount = fixedU64(uint64(childCounts[key]))
	}

	return s.verifySorted()
}

// verifySorted checks that a re-sort of the finalized store by the
// now-rewritten (parent,name) key is a no-op.
func (s *entryStore) verifySorted() error {
	for i := 1; i < len(s.entries); i++ {
		a := sortKey{parent: s.entries[i-1].parent.resolve(), name: s.entries[i-1].name}
		b := sortKey{parent: s.entries[i].parent.resolve(), name: s.entries[i].name}
		if lessKey(b, a) {
			return fmt.Errorf("%w: entry store is not sorted after resolution", ErrSchemaViolation)
		}
	}
	return nil
}

// serialize writes the entry records in their final, resolved order,
// populating s.names and s.targets as it goes. The property order is part
// of the binary format: kind, name, parent, owner, group, rights, mtime,
// then the kind-specific variant fields. Must be called only after
// resolveAndSort.
func (s *entryStore) serialize(w io.Writer, order binary.ByteOrder) error {
	if err := binary.Write(w, order, uint32(len(s.entries))); err != nil {
		return err
	}
	for _, e := range s.entries {
		nameIdx, err := s.names.add(e.name)
		if err != nil {
			return err
		}
		if err := binary.Write(w, order, uint8(e.kind)); err != nil {
			return err
		}
		if err := binary.Write(w, order, nameIdx); err != nil {
			return err
		}
		for _, v := range []uint64{e.parent.resolve(), e.owner, e.group, e.rights, e.mtime} {
			if err := binary.Write(w, order, v); err != nil {
				return err
			}
		}

		switch e.kind {
		case DirEntryKind:
			if err := binary.Write(w, order, e.firstChild.resolve()); err != nil {
				return err
			}
			if err := binary.Write(w, order, e.childCount.resolve()); err != nil {
				return err
			}
		case FileEntryKind:
			if err := binary.Write(w, order, e.contentPack); err != nil {
				return err
			}
			if err := binary.Write(w, order, e.contentID); err != nil {
				return err
			}
			if err := binary.Write(w, order, e.size); err != nil {
				return err
			}
		case LinkEntryKind:
			targetIdx, err := s.targets.add(e.target)
			if err != nil {
				return err
			}
			if err := binary.Write(w, order, targetIdx); err != nil {
				return err
			}
		}
	}
	return nil
}
