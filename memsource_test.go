package arx

import (
	"bytes"
	"io"
)

// memSource is a minimal, in-memory SourceEntry used by the core's own unit
// tests so treebuilder.go and entrystore.go can be exercised without going
// through a real filesystem (fsinput covers that side separately).
type memSource struct {
	name     string
	uid, gid uint64
	mode     uint64
	mtime    uint64

	kind     SourceKind
	children []*memSource
	content  []byte
	target   []byte
}

func memDir(name string, children ...*memSource) *memSource {
	return &memSource{name: name, kind: SourceDir, mode: unixIFDIR | 0o755, children: children}
}

func memFile(name string, content string) *memSource {
	return &memSource{name: name, kind: SourceFile, mode: unixIFREG | 0o644, content: []byte(content)}
}

func memLink(name, target string) *memSource {
	return &memSource{name: name, kind: SourceLink, mode: unixIFLNK | 0o777, target: []byte(target)}
}

func (m *memSource) Name() []byte     { return []byte(m.name) }
func (m *memSource) Uid() uint64      { return m.uid }
func (m *memSource) Gid() uint64      { return m.gid }
func (m *memSource) Mode() uint64     { return m.mode }
func (m *memSource) Mtime() uint64    { return m.mtime }
func (m *memSource) Kind() SourceKind { return m.kind }

func (m *memSource) Children() ([]SourceEntry, error) {
	out := make([]SourceEntry, len(m.children))
	for i, c := range m.children {
		out[i] = c
	}
	return out, nil
}

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

func (m *memSource) Reader() (io.ReadCloser, int64, error) {
	return nopReadCloser{bytes.NewReader(m.content)}, int64(len(m.content)), nil
}

func (m *memSource) Target() ([]byte, error) {
	return m.target, nil
}
