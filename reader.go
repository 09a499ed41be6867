package arx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// readerEntry is the read-side counterpart of entry: fully resolved, no
// deferred fields, and carrying resolved name/target bytes instead of
// value-store indices.
type readerEntry struct {
	kind       EntryKind
	name       []byte
	parent     uint64
	owner      uint64
	group      uint64
	rights     uint64
	mtime      uint64
	firstChild uint32
	childCount uint32
	// File
	contentPack uint16
	contentID   uint32
	size        uint64
	// Link
	target []byte
}

// Archive is the read-side view of a finalized arx container: a parsed
// directory pack (names, targets, entries) plus a handle on the content
// pack bytes, wherever they live (embedded in the manifest or a sidecar).
// It implements io/fs.FS so callers can list, stat and read archive content
// with standard library idioms.
type Archive struct {
	entries []readerEntry

	contentPackID uint16
	contentAt     io.ReaderAt
	clusters      []clusterRecord

	closers []io.Closer
}

// Open parses manifestPath (and any sidecars it references) into an Archive.
func Open(manifestPath string) (*Archive, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	a := &Archive{}
	a.closers = append(a.closers, f)

	if err := a.load(f, filepath.Dir(manifestPath)); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases any sidecar file handles opened by Open.
func (a *Archive) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *Archive) load(f *os.File, dir string) error {
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	if len(data) < len(manifestSignature) || !bytes.Equal(data[:len(manifestSignature)], manifestSignature[:]) {
		return fmt.Errorf("%w: bad signature", ErrInvalidManifest)
	}

	r := bytes.NewReader(data)
	if _, err := r.Seek(int64(len(manifestSignature)), io.SeekStart); err != nil {
		return err
	}

	// The manifest body holds embedded pack bytes first, then the footer
	// table; locate the footer by reading its offset from the tail, the
	// same convention writeManifest uses for every pack footer.
	if len(data) < 12 {
		return fmt.Errorf("%w: truncated manifest", ErrInvalidManifest)
	}
	footerStart := packOrder.Uint64(data[len(data)-12 : len(data)-4])
	if footerStart > uint64(len(data)) {
		return fmt.Errorf("%w: corrupt footer offset", ErrInvalidManifest)
	}

	fr := bytes.NewReader(data[footerStart:])
	var refCount uint32
	if err := binary.Read(fr, packOrder, &refCount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	type ref struct {
		packID   uint16
		size     uint64
		checksum uint32
		embedded bool
		offset   uint64
		location string
	}
	refs := make([]ref, 0, refCount)
	for i := uint32(0); i < refCount; i++ {
		var rr ref
		if err := binary.Read(fr, packOrder, &rr.packID); err != nil {
			return err
		}
		if err := binary.Read(fr, packOrder, &rr.size); err != nil {
			return err
		}
		if err := binary.Read(fr, packOrder, &rr.checksum); err != nil {
			return err
		}
		if err := binary.Read(fr, packOrder, &rr.embedded); err != nil {
			return err
		}
		if err := binary.Read(fr, packOrder, &rr.offset); err != nil {
			return err
		}
		var nameLen uint16
		if err := binary.Read(fr, packOrder, &nameLen); err != nil {
			return err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(fr, name); err != nil {
			return err
		}
		rr.location = string(name)
		refs = append(refs, rr)
	}
	if len(refs) != 2 {
		return fmt.Errorf("%w: expected 2 pack references, got %d", ErrInvalidManifest, len(refs))
	}
	dirRef, contentRef := refs[0], refs[1]

	var dirBytes []byte
	if dirRef.embedded {
		dirBytes = data[dirRef.offset : dirRef.offset+dirRef.size]
	} else {
		b, err := os.ReadFile(filepath.Join(dir, dirRef.location))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPack, err)
		}
		dirBytes = b
	}
	if err := a.loadDirectoryPack(dirBytes); err != nil {
		return err
	}

	a.contentPackID = contentRef.packID
	if contentRef.embedded {
		a.contentAt = bytes.NewReader(data[contentRef.offset : contentRef.offset+contentRef.size])
	} else {
		cf, err := os.Open(filepath.Join(dir, contentRef.location))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPack, err)
		}
		a.closers = append(a.closers, cf)
		a.contentAt = cf
	}
	return a.loadContentFooter(contentRef.size)
}
