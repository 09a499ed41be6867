// Package fsinput is the external-collaborator traversal layer arx's core
// treats as opaque. It implements arx.SourceEntry over a real directory
// tree and over an explicit file list, the two supported traversal modes.
package fsinput

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/go-arx/arx"
)

// unixMode reports the raw unix mode bits for info the way arx's entry
// schema records them, reading uid/gid/mode straight off the platform stat
// struct when available and falling back to the portable fs.FileMode bits
// otherwise (e.g. on a filesystem abstraction with no Sys() support).
func unixMode(path string, info fs.FileInfo) (uid, gid, mode uint64) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Uid), uint64(st.Gid), uint64(st.Mode)
	}
	return 0, 0, fileModeToUnix(info.Mode())
}

const (
	unixIFMT  = 0xf000
	unixIFREG = 0x8000
	unixIFDIR = 0x4000
	unixIFLNK = 0xa000
)

func fileModeToUnix(mode fs.FileMode) uint64 {
	res := uint64(mode.Perm())
	switch {
	case mode&fs.ModeDir != 0:
		res |= unixIFDIR
	case mode&fs.ModeSymlink != 0:
		res |= unixIFLNK
	default:
		res |= unixIFREG
	}
	return res
}

// TreeEntry walks a real directory tree rooted at a filesystem path,
// implementing arx.SourceEntry directly over os.Lstat/os.Open: recursing
// by default, each directory descriptor producing its children.
type TreeEntry struct {
	path          string // absolute or base-dir-relative filesystem path
	name          string // the single path component recorded in the archive
	info          os.FileInfo
	followSymlink bool
}

// NewTree opens root and returns the TreeEntry for it. The name recorded
// for root itself is filepath.Base(root) (the caller typically discards
// the root entry and calls Children() to enumerate its direct descendants).
func NewTree(root string, followSymlink bool) (*TreeEntry, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", arx.ErrInputNotFound, err)
	}
	return &TreeEntry{path: root, name: filepath.Base(root), info: info, followSymlink: followSymlink}, nil
}

func (t *TreeEntry) Name() []byte { return []byte(t.name) }

func (t *TreeEntry) Uid() uint64 {
	uid, _, _ := unixMode(t.path, t.info)
	return uid
}

func (t *TreeEntry) Gid() uint64 {
	_, gid, _ := unixMode(t.path, t.info)
	return gid
}

func (t *TreeEntry) Mode() uint64 {
	_, _, mode := unixMode(t.path, t.info)
	return mode
}

func (t *TreeEntry) Mtime() uint64 {
	return uint64(t.info.ModTime().Unix())
}

func (t *TreeEntry) Kind() arx.SourceKind {
	switch {
	case t.info.Mode()&fs.ModeSymlink != 0 && !t.followSymlink:
		return arx.SourceLink
	case t.info.IsDir():
		return arx.SourceDir
	default:
		return arx.SourceFile
	}
}

func (t *TreeEntry) Children() ([]arx.SourceEntry, error) {
	entries, err := os.ReadDir(t.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", arx.ErrCannotRead, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	children := make([]arx.SourceEntry, 0, len(entries))
	for _, de := range entries {
		childPath := filepath.Join(t.path, de.Name())
		info, err := os.Lstat(childPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", arx.ErrCannotRead, err)
		}
		child := &TreeEntry{path: childPath, name: de.Name(), info: info, followSymlink: t.followSymlink}
		if child.followSymlink && info.Mode()&fs.ModeSymlink != 0 {
			resolved, err := os.Stat(childPath)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", arx.ErrCannotRead, err)
			}
			child.info = resolved
		}
		children = append(children, child)
	}
	return children, nil
}

func (t *TreeEntry) Reader() (io.ReadCloser, int64, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, 0, err
	}
	return f, t.info.Size(), nil
}

func (t *TreeEntry) Target() ([]byte, error) {
	target, err := os.Readlink(t.path)
	if err != nil {
		return nil, err
	}
	return []byte(target), nil
}
