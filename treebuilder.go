package arx

import "fmt"

// dirNode is the builder-side directory tree node.
// The root is a distinguished node whose index is nil: it has no entry
// record of its own, only children.
type dirNode struct {
	children map[string]*dirNode // directory children, keyed by name
	leaves   map[string]bool     // file/link child names, keyed by name
	index    *uint32             // this directory's own entry index, nil for root
}

func newDirNode() *dirNode {
	return &dirNode{children: map[string]*dirNode{}, leaves: map[string]bool{}}
}

func (n *dirNode) hasName(name string) bool {
	if _, ok := n.children[name]; ok {
		return true
	}
	return n.leaves[name]
}

// parentValue computes own_index+1 if the node has been assigned an entry,
// else 0 (root). add_entry returns a directory's index immediately, so by
// the time any child is processed the value is already known and can be
// bound eagerly - see DESIGN.md.
func (n *dirNode) parentValue() uint64 {
	if n.index == nil {
		return 0
	}
	return uint64(*n.index) + 1
}

// ContentAdder hands a file's byte stream to the content pack writer and
// returns the content address (pack id, content id) it was assigned.
type ContentAdder func(r SourceEntry) (contentPack uint16, contentID uint32, size uint64, err error)

// TreeBuilder merges a stream of SourceEntry values into the growing
// directory tree and appends entry records to the entry store in the
// order encountered. Contiguity and sort order are NOT properties of this
// phase; they are established later by entryStore.resolveAndSort.
type TreeBuilder struct {
	root  *dirNode
	store *entryStore
}

func newTreeBuilder(store *entryStore) *TreeBuilder {
	return &TreeBuilder{root: newDirNode(), store: store}
}

// Root returns the builder's root node, the starting point for Add.
func (b *TreeBuilder) Root() *dirNode {
	return b.root
}

// Add merges src into the tree under parent, recursing depth-first into
// directories. parent is typically b.Root() for a top-level input.
func (b *TreeBuilder) Add(parent *dirNode, src SourceEntry, addContent ContentAdder) error {
	name := string(src.Name())

	switch src.Kind() {
	case SourceDir:
		if _, ok := parent.children[name]; ok {
			// Name uniqueness: re-adding a directory is a no-op, the first
			// addition's attributes win.
			return nil
		}
		if parent.leaves[name] {
			return fmt.Errorf("%w: %q already exists as a non-directory entry", ErrSchemaViolation, name)
		}

		e := &entry{
			kind:   DirEntryKind,
			name:   append([]byte(nil), src.Name()...),
			parent: fixedU64(parent.parentValue()),
			owner:  src.Uid(),
			group:  src.Gid(),
			rights: src.Mode(),
			mtime:  src.Mtime(),
		}
		idx := b.store.addEntry(e)

		node := newDirNode()
		idxCopy := idx
		node.index = &idxCopy
		parent.children[name] = node

		children, err := src.Children()
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := b.Add(node, child, addContent); err != nil {
				return err
			}
		}
		return nil

	case SourceFile:
		if parent.hasName(name) {
			return fmt.Errorf("%w: duplicate entry %q", ErrSchemaViolation, name)
		}
		pack, id, size, err := addContent(src)
		if err != nil {
			return err
		}
		e := &entry{
			kind:        FileEntryKind,
			name:        append([]byte(nil), src.Name()...),
			parent:      fixedU64(parent.parentValue()),
			owner:       src.Uid(),
			group:       src.Gid(),
			rights:      src.Mode(),
			mtime:       src.Mtime(),
			contentPack: pack,
			contentID:   id,
			size:        size,
		}
		b.store.addEntry(e)
		parent.leaves[name] = true
		return nil

	case SourceLink:
		if parent.hasName(name) {
			return fmt.Errorf("%w: duplicate entry %q", ErrSchemaViolation, name)
		}
		target, err := src.Target()
		if err != nil {
			return err
		}
		e := &entry{
			kind:   LinkEntryKind,
			name:   append([]byte(nil), src.Name()...),
			parent: fixedU64(parent.parentValue()),
			owner:  src.Uid(),
			group:  src.Gid(),
			rights: src.Mode(),
			mtime:  src.Mtime(),
			target: append([]byte(nil), target...),
		}
		b.store.addEntry(e)
		parent.leaves[name] = true
		return nil

	default:
		return fmt.Errorf("%w: unknown source kind %d", ErrSchemaViolation, src.Kind())
	}
}

// rootChildCount reports how many direct children the root node has, used
// to size the arx_root index at finalize.
func (b *TreeBuilder) rootChildCount() int {
	return len(b.root.children) + len(b.root.leaves)
}
