package arx

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
)

// manifestSignature is the fixed 10-byte header every arx manifest begins
// with: magic "jbkC", four reserved bytes, then a 2-byte format version.
// TwoFiles and NoConcat share the same signature since the difference
// between concat modes is only which packs are embedded, not the manifest
// framing itself.
var manifestSignature = [10]byte{'j', 'b', 'k', 'C', 0, 0, 0, 0, 0, 2}

// ConcatMode controls whether the directory and content packs are embedded
// in the manifest file or written as sidecar files.
type ConcatMode uint8

const (
	// OneFile embeds both the directory pack and content pack in the
	// manifest, producing a single output file.
	OneFile ConcatMode = iota
	// TwoFiles embeds the directory pack but writes the content pack to a
	// ".jbkc" sidecar next to the manifest.
	TwoFiles
	// NoConcat writes both packs as ".jbkd"/".jbkc" sidecars; the manifest
	// only references them.
	NoConcat
)

func (m ConcatMode) String() string {
	switch m {
	case OneFile:
		return "OneFile"
	case TwoFiles:
		return "TwoFiles"
	case NoConcat:
		return "NoConcat"
	default:
		return "unknown"
	}
}

// packRef describes one component pack referenced from the manifest
// descriptor table: either its byte range within the manifest stream
// (embedded) or a path relative to the manifest (sidecar).
type packRef struct {
	packID   uint16
	size     uint64
	checksum uint32
	embedded bool
	offset   uint64 // valid when embedded
	location string // valid when not embedded; base name only
}

// writeManifest assembles the manifest file: signature, then the directory
// pack descriptor, then the content pack descriptor, in that order,
// followed by a trailing descriptor table and a whole-file checksum
// covering everything before it.
func writeManifest(w io.Writer, mode ConcatMode, dirDesc *DirectoryPackDescriptor, dirBytes []byte, contentDesc *ContentPackDescriptor, contentBytes []byte) error {
	var out bytes.Buffer
	out.Write(manifestSignature[:])

	refs := make([]packRef, 0, 2)

	dirRef := packRef{packID: dirDesc.PackID, size: dirDesc.Size, checksum: dirDesc.Checksum}
	if mode == OneFile || mode == TwoFiles {
		dirRef.embedded = true
		dirRef.offset = uint64(out.Len())
		out.Write(dirBytes)
	} else {
		dirRef.location = dirDesc.Location
	}
	refs = append(refs, dirRef)

	contentRef := packRef{packID: contentDesc.PackID, size: contentDesc.Size, checksum: contentDesc.Checksum}
	if mode == OneFile {
		contentRef.embedded = true
		contentRef.offset = uint64(out.Len())
		out.Write(contentBytes)
	} else {
		contentRef.location = contentDesc.Location
	}
	refs = append(refs, contentRef)

	footerStart := out.Len()
	binary.Write(&out, packOrder, uint32(len(refs)))
	for _, r := range refs {
		binary.Write(&out, packOrder, r.packID)
		binary.Write(&out, packOrder, r.size)
		binary.Write(&out, packOrder, r.checksum)
		binary.Write(&out, packOrder, r.embedded)
		binary.Write(&out, packOrder, r.offset)
		writeLenPrefixedString(&out, r.location)
	}
	binary.Write(&out, packOrder, uint64(footerStart))

	checksum := crc32.ChecksumIEEE(out.Bytes())
	binary.Write(&out, packOrder, checksum)

	_, err := w.Write(out.Bytes())
	return err
}

// sidecarPath derives the ".jbkd"/".jbkc" sidecar path next to manifestPath.
func sidecarPath(manifestPath, suffix string) string {
	return trimArxExt(manifestPath) + suffix
}

func trimArxExt(path string) string {
	const ext = ".arx"
	if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
		return path[:len(path)-len(ext)]
	}
	return path
}
