package arx

import "io"

// SourceKind tags what a SourceEntry yields from Kind().
// Reading the kind-specific accessor for a different kind than Kind()
// reports is a caller error.
type SourceKind uint8

const (
	SourceDir SourceKind = iota + 1
	SourceFile
	SourceLink
)

// SourceEntry is the lazy filesystem descriptor the tree builder consumes.
// It is deliberately narrow: traversal, content reading and target
// resolution are all external-collaborator concerns (fsinput implements
// this interface over a real filesystem or an explicit path list); the
// builder only ever calls the accessor matching Kind().
//
// Names are raw bytes, not strings, so that non-UTF-8 path components
// survive a round trip untouched.
type SourceEntry interface {
	Name() []byte
	Uid() uint64
	Gid() uint64
	Mode() uint64
	Mtime() uint64

	Kind() SourceKind

	// Children lists a SourceDir entry's direct children. Called at most
	// once per entry.
	Children() ([]SourceEntry, error)

	// Reader opens a SourceFile entry's content stream with its known
	// size. Called at most once per entry; the caller closes it.
	Reader() (io.ReadCloser, int64, error)

	// Target returns a SourceLink entry's raw target bytes.
	Target() ([]byte, error)
}
