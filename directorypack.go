package arx

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"

	"github.com/google/uuid"
)

var directoryPackMagic = [4]byte{'j', 'b', 'k', 'd'}

// packIndex is a named lookup structure over a contiguous range of one
// entry store. arx only ever registers two indexes: the full entry range
// and the root's immediate children.
type packIndex struct {
	name        string
	storeID     uint16
	keyProperty entryProperty
	firstEntry  uint32
	entryCount  uint32
}

// DirectoryPackDescriptor mirrors ContentPackDescriptor's shape for the
// directory pack.
type DirectoryPackDescriptor struct {
	PackID   uint16
	Size     uint64
	Checksum uint32
	Location string
}

// DirectoryPackWriter owns the entry store and its backing value stores and
// emits named indexes over the final layout.
type DirectoryPackWriter struct {
	packID  uint16
	names   *valueStore
	targets *valueStore
	store   *entryStore
	indexes []packIndex
	closed  bool

	finalBuf bytes.Buffer
}

func newDirectoryPackWriter(packID uint16) *DirectoryPackWriter {
	names := newValueStore(PlainValueStore)
	targets := newValueStore(PlainValueStore)
	return &DirectoryPackWriter{
		packID:  packID,
		names:   names,
		targets: targets,
		store:   newEntryStore(names, targets),
	}
}

// EntryStore exposes the writer's single entry store to the tree builder.
func (w *DirectoryPackWriter) EntryStore() *entryStore {
	return w.store
}

// CreateIndex registers a named lookup structure.
func (w *DirectoryPackWriter) CreateIndex(name string, keyProperty entryProperty, firstEntry, entryCount uint32) {
	w.indexes = append(w.indexes, packIndex{
		name:        name,
		storeID:     w.packID,
		keyProperty: keyProperty,
		firstEntry:  firstEntry,
		entryCount:  entryCount,
	})
}

// Finalize resolves and sorts the entry store, registers arx_entries and
// arx_root, then serializes the full pack. The caller, Creator, still owns
// deciding arx_root's bounds since only it knows the tree builder's root
// node.
func (w *DirectoryPackWriter) Finalize(path string, rootChildCount int) (*DirectoryPackDescriptor, error) {
	if w.closed {
		return nil, ErrBuilderClosed
	}
	w.closed = true

	if err := w.store.resolveAndSort(); err != nil {
		return nil, err
	}

	w.CreateIndex("arx_entries", propParent, 0, uint32(w.store.Len()))
	w.CreateIndex("arx_root", propParent, 0, uint32(rootChildCount))

	var body bytes.Buffer
	if err := w.store.serialize(&body, packOrder); err != nil {
		return nil, err
	}

	var namesBuf, targetsBuf bytes.Buffer
	if err := w.names.serialize(&namesBuf, packOrder); err != nil {
		return nil, ErrIoFailure
	}
	if err := w.targets.serialize(&targetsBuf, packOrder); err != nil {
		return nil, ErrIoFailure
	}

	var out bytes.Buffer
	out.Write(directoryPackMagic[:])
	binary.Write(&out, packOrder, w.packID)

	instance, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	out.Write(instance[:])

	binary.Write(&out, packOrder, uint64(namesBuf.Len()))
	out.Write(namesBuf.Bytes())
	binary.Write(&out, packOrder, uint64(targetsBuf.Len()))
	out.Write(targetsBuf.Bytes())
	binary.Write(&out, packOrder, uint64(body.Len()))
	out.Write(body.Bytes())

	binary.Write(&out, packOrder, uint32(len(w.indexes)))
	for _, idx := range w.indexes {
		writeLenPrefixedString(&out, idx.name)
		binary.Write(&out, packOrder, idx.storeID)
		binary.Write(&out, packOrder, uint8(idx.keyProperty))
		binary.Write(&out, packOrder, idx.firstEntry)
		binary.Write(&out, packOrder, idx.entryCount)
	}

	checksum := crc32.ChecksumIEEE(out.Bytes())
	binary.Write(&out, packOrder, checksum)

	w.finalBuf = out

	desc := &DirectoryPackDescriptor{
		PackID:   w.packID,
		Size:     uint64(out.Len()),
		Checksum: checksum,
		Location: path,
	}

	if path == "" {
		return desc, nil
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return nil, ErrIoFailure
	}
	return desc, nil
}

// Bytes exposes the complete, finalized pack bytes for embedding into the
// manifest stream; valid only after Finalize has been called.
func (w *DirectoryPackWriter) Bytes() []byte {
	return w.finalBuf.Bytes()
}

func writeLenPrefixedString(w io.Writer, s string) {
	binary.Write(w, packOrder, uint16(len(s)))
	io.WriteString(w, s)
}
