//go:build fuse

package arx

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// FuseNode adapts a directory entry of an Archive to go-fuse's high-level
// Inode API, giving a mounted archive Lookup/Open/OpenDir/ReadDir
// implementations built on the library's fs.InodeEmbedder API.
type FuseNode struct {
	fs.Inode
	archive *Archive
	index   uint32 // meaningless for the root
	isRoot  bool
}

var (
	_ fs.NodeLookuper  = (*FuseNode)(nil)
	_ fs.NodeReaddirer = (*FuseNode)(nil)
	_ fs.NodeOpener    = (*FuseNode)(nil)
	_ fs.NodeGetattrer = (*FuseNode)(nil)
	_ fs.NodeReadlinker = (*FuseNode)(nil)
)

// MountRoot returns the root FuseNode for a's tree, ready to pass to
// fs.Mount.
func MountRoot(a *Archive) *FuseNode {
	return &FuseNode{archive: a, isRoot: true}
}

func (n *FuseNode) entry() *readerEntry {
	if n.isRoot {
		return nil
	}
	return &n.archive.entries[n.index]
}

func (n *FuseNode) childRange() []uint32 {
	if n.isRoot {
		return n.archive.childRange(nil)
	}
	idx := n.index
	return n.archive.childRange(&idx)
}

func (n *FuseNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	for _, idx := range n.childRange() {
		e := &n.archive.entries[idx]
		if string(e.name) != name {
			continue
		}
		child := &FuseNode{archive: n.archive, index: idx}
		fillAttr(e, &out.Attr)
		mode := uint32(fuse.S_IFREG)
		switch e.kind {
		case DirEntryKind:
			mode = fuse.S_IFDIR
		case LinkEntryKind:
			mode = fuse.S_IFLNK
		}
		return n.NewInode(ctx, child, fs.StableAttr{Mode: mode}), fs.OK
	}
	return nil, syscall.ENOENT
}

func (n *FuseNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries := n.childRange()
	list := make([]fuse.DirEntry, 0, len(entries))
	for _, idx := range entries {
		e := &n.archive.entries[idx]
		typ := uint32(fuse.S_IFREG)
		if e.kind == DirEntryKind {
			typ = fuse.S_IFDIR
		} else if e.kind == LinkEntryKind {
			typ = fuse.S_IFLNK
		}
		list = append(list, fuse.DirEntry{Name: string(e.name), Mode: typ})
	}
	return fs.NewListDirStream(list), fs.OK
}

func (n *FuseNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	e := n.entry()
	if e == nil || e.kind != FileEntryKind {
		return nil, 0, syscall.EISDIR
	}
	r, err := n.archive.OpenContent(e.contentID)
	if err != nil {
		return nil, 0, syscall.EIO
	}
	return &fuseFileHandle{r: r}, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (n *FuseNode) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	e := n.entry()
	if e == nil || e.kind != LinkEntryKind {
		return nil, syscall.EINVAL
	}
	return e.target, fs.OK
}

func (n *FuseNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if e := n.entry(); e != nil {
		fillAttr(e, &out.Attr)
	}
	return fs.OK
}

func fillAttr(e *readerEntry, attr *fuse.Attr) {
	attr.Uid = uint32(e.owner)
	attr.Gid = uint32(e.group)
	attr.Mode = uint32(unixToFileMode(e.rights))
	attr.Size = e.size
	attr.Mtime = e.mtime
}

// fuseFileHandle wraps a decompressed content reader; go-fuse's high-level
// API reads via ReadAt-like semantics, so content is buffered fully once on
// first access (arx content is not mutated, so this is safe to cache).
type fuseFileHandle struct {
	r    interface {
		Read([]byte) (int, error)
		Close() error
	}
	data []byte
	read bool
}

func (h *fuseFileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if !h.read {
		buf := make([]byte, 0, 4096)
		tmp := make([]byte, 4096)
		for {
			n, err := h.r.Read(tmp)
			if n > 0 {
				buf = append(buf, tmp[:n]...)
			}
			if err != nil {
				break
			}
		}
		h.r.Close()
		h.data = buf
		h.read = true
	}
	if off >= int64(len(h.data)) {
		return fuse.ReadResultData(nil), fs.OK
	}
	end := off + int64(len(dest))
	if end > int64(len(h.data)) {
		end = int64(len(h.data))
	}
	return fuse.ReadResultData(h.data[off:end]), fs.OK
}
