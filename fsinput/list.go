package fsinput

import (
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-arx/arx"
)

// synthDefaults are the attributes list-driven ancestor directories get when
// no explicit entry names them: uid=1000, gid=1000, mode=0o755, mtime=0.
const (
	synthUID   = 1000
	synthGID   = 1000
	synthMode  = 0o755 | unixIFDIR
	synthMtime = 0
)

// listNode is one node of the in-memory tree list.Build constructs before
// handing it to the tree builder as a SourceEntry: either a real leaf
// backed by a filesystem path, or a synthesized ancestor directory.
type listNode struct {
	name      string
	synthetic bool
	realPath  string // set when !synthetic
	info      os.FileInfo
	children  []*listNode
}

// Build turns an explicit, flat list of filesystem paths into a single
// SourceEntry tree rooted at a synthesized directory, synthesizing any
// ancestor directory the list itself does not name. Paths are taken
// relative to baseDir. Each listed path is added as a leaf (file or link);
// a path that is itself a directory is not expanded here - pass its
// contents explicitly if they should be archived.
func Build(baseDir string, paths []string) (arx.SourceEntry, error) {
	root := &listNode{name: "", synthetic: true}
	index := map[string]*listNode{"": root}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	for _, p := range sorted {
		clean := path.Clean(toSlash(p))
		full := baseDir + string(os.PathSeparator) + clean
		info, err := os.Lstat(full)
		if err != nil {
			return nil, err
		}

		parts := strings.Split(clean, "/")
		cur := root
		curKey := ""
		for i, part := range parts {
			curKey = path.Join(curKey, part)
			next, ok := index[curKey]
			if !ok {
				next = &listNode{name: part}
				if i < len(parts)-1 {
					next.synthetic = true
				} else {
					next.realPath = baseDir + string(os.PathSeparator) + curKey
					next.info = info
				}
				index[curKey] = next
				cur.children = append(cur.children, next)
			}
			cur = next
		}
	}

	return &listEntry{node: root}, nil
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, string(os.PathSeparator), "/")
}

// listEntry adapts a listNode into arx.SourceEntry.
type listEntry struct {
	node *listNode
}

func (e *listEntry) Name() []byte { return []byte(e.node.name) }

func (e *listEntry) Uid() uint64 {
	if e.node.synthetic {
		return synthUID
	}
	uid, _, _ := unixMode(e.node.realPath, e.node.info)
	return uid
}

func (e *listEntry) Gid() uint64 {
	if e.node.synthetic {
		return synthGID
	}
	_, gid, _ := unixMode(e.node.realPath, e.node.info)
	return gid
}

func (e *listEntry) Mode() uint64 {
	if e.node.synthetic {
		return synthMode
	}
	_, _, mode := unixMode(e.node.realPath, e.node.info)
	return mode
}

func (e *listEntry) Mtime() uint64 {
	if e.node.synthetic {
		return synthMtime
	}
	return uint64(e.node.info.ModTime().Unix())
}

func (e *listEntry) Kind() arx.SourceKind {
	if e.node.synthetic {
		return arx.SourceDir
	}
	switch {
	case e.node.info.Mode()&fs.ModeSymlink != 0:
		return arx.SourceLink
	case e.node.info.IsDir():
		return arx.SourceDir
	default:
		return arx.SourceFile
	}
}

func (e *listEntry) Children() ([]arx.SourceEntry, error) {
	out := make([]arx.SourceEntry, 0, len(e.node.children))
	for _, c := range e.node.children {
		out = append(out, &listEntry{node: c})
	}
	return out, nil
}

func (e *listEntry) Reader() (io.ReadCloser, int64, error) {
	f, err := os.Open(e.node.realPath)
	if err != nil {
		return nil, 0, err
	}
	return f, e.node.info.Size(), nil
}

func (e *listEntry) Target() ([]byte, error) {
	target, err := os.Readlink(e.node.realPath)
	if err != nil {
		return nil, err
	}
	return []byte(target), nil
}
