package arx

import (
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

// arxDirEntry implements fs.DirEntry and fs.FileInfo over a readerEntry,
// pairing a directory listing row with its attribute metadata.
type arxDirEntry struct {
	a     *Archive
	index uint32
	e     *readerEntry
}

// FileAttrs exposes the archive-native ownership fields a plain fs.FileInfo
// has no room for; fs.FileInfo.Sys() values returned by this package satisfy
// it, so callers that need uid/gid (e.g. an extractor restoring ownership)
// can type-assert for it without depending on any unexported type.
type FileAttrs interface {
	Uid() uint64
	Gid() uint64
}

func (d *arxDirEntry) Name() string               { return string(d.e.name) }
func (d *arxDirEntry) IsDir() bool                 { return d.e.kind == DirEntryKind }
func (d *arxDirEntry) Type() fs.FileMode           { return d.Mode().Type() }
func (d *arxDirEntry) Info() (fs.FileInfo, error)  { return d, nil }
func (d *arxDirEntry) Size() int64                 { return int64(d.e.size) }
func (d *arxDirEntry) ModTime() time.Time          { return time.Unix(int64(d.e.mtime), 0) }
func (d *arxDirEntry) Sys() any                    { return d }
func (d *arxDirEntry) Uid() uint64                 { return d.e.owner }
func (d *arxDirEntry) Gid() uint64                 { return d.e.group }
func (d *arxDirEntry) Mode() fs.FileMode {
	switch d.e.kind {
	case LinkEntryKind:
		return unixToFileMode(d.e.rights | unixIFLNK)
	default:
		return unixToFileMode(d.e.rights)
	}
}

// childRange returns the contiguous slice of a's entries that are direct
// children of parentIndex, or the implicit root range when parentIndex is
// nil.
func (a *Archive) childRange(parentIndex *uint32) []uint32 {
	if parentIndex == nil {
		var out []uint32
		for i, e := range a.entries {
			if e.parent == 0 {
				out = append(out, uint32(i))
			}
		}
		return out
	}
	e := a.entries[*parentIndex]
	out := make([]uint32, e.childCount)
	for i := range out {
		out[i] = e.firstChild + uint32(i)
	}
	return out
}

// resolve walks name (a slash-separated, fs.FS-style path) from the root and
// returns the index of the entry it names, or 0 with ok=false.
func (a *Archive) resolve(name string) (uint32, bool) {
	name = path.Clean(name)
	if name == "." {
		return 0, false // caller must special-case the root, which has no entry
	}

	var cur *uint32
	for _, part := range strings.Split(name, "/") {
		var found *uint32
		for _, idx := range a.childRange(cur) {
			if string(a.entries[idx].name) == part {
				v := idx
				found = &v
				break
			}
		}
		if found == nil {
			return 0, false
		}
		cur = found
	}
	return *cur, true
}

// Open implements io/fs.FS.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &arxDir{a: a, entries: a.childRange(nil)}, nil
	}

	idx, ok := a.resolve(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	e := &a.entries[idx]

	if e.kind == DirEntryKind {
		return &arxDir{a: a, index: idx, self: e, entries: a.childRange(&idx)}, nil
	}
	if e.kind == LinkEntryKind {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	r, err := a.OpenContent(e.contentID)
	if err != nil {
		return nil, err
	}
	return &arxFile{entry: &arxDirEntry{a: a, index: idx, e: e}, r: r}, nil
}

// Readlink returns a link entry's raw target bytes, named name.
func (a *Archive) Readlink(name string) ([]byte, error) {
	idx, ok := a.resolve(name)
	if !ok {
		return nil, &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrNotExist}
	}
	e := &a.entries[idx]
	if e.kind != LinkEntryKind {
		return nil, &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return e.target, nil
}

// arxDir implements fs.File and fs.ReadDirFile for a directory entry.
type arxDir struct {
	a       *Archive
	index   uint32
	self    *readerEntry
	entries []uint32
	pos     int
}

func (d *arxDir) Stat() (fs.FileInfo, error) {
	if d.self == nil {
		return &arxDirEntry{a: d.a, e: &readerEntry{kind: DirEntryKind, rights: 0o755}}, nil
	}
	return &arxDirEntry{a: d.a, index: d.index, e: d.self}, nil
}

func (d *arxDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: "", Err: fs.ErrInvalid}
}

func (d *arxDir) Close() error { return nil }

func (d *arxDir) ReadDir(n int) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	for d.pos < len(d.entries) {
		idx := d.entries[d.pos]
		d.pos++
		out = append(out, &arxDirEntry{a: d.a, index: idx, e: &d.a.entries[idx]})
		if n > 0 && len(out) >= n {
			return out, nil
		}
	}
	if n > 0 && len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// arxFile implements fs.File for a regular file entry.
type arxFile struct {
	entry *arxDirEntry
	r     io.ReadCloser
}

func (f *arxFile) Stat() (fs.FileInfo, error) { return f.entry, nil }
func (f *arxFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *arxFile) Close() error               { return f.r.Close() }
