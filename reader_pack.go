package arx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// contentPackHeaderSize is magic(4) + packID(2) + instance uuid(16), the
// fixed prefix contentpack.go's Finalize writes before any cluster bytes.
const contentPackHeaderSize = 4 + 2 + 16

func (a *Archive) loadDirectoryPack(data []byte) error {
	if len(data) < 4 || !bytes.Equal(data[:4], directoryPackMagic[:]) {
		return fmt.Errorf("%w: bad directory pack magic", ErrInvalidPack)
	}
	r := bytes.NewReader(data[4:])

	var packID uint16
	if err := binary.Read(r, packOrder, &packID); err != nil {
		return err
	}
	if _, err := r.Seek(16, io.SeekCurrent); err != nil { // instance uuid
		return err
	}

	names, err := readLenPrefixedBlock(r)
	if err != nil {
		return err
	}
	targets, err := readLenPrefixedBlock(r)
	if err != nil {
		return err
	}
	body, err := readLenPrefixedBlock(r)
	if err != nil {
		return err
	}

	namesStore, err := readValueStore(bytes.NewReader(names), packOrder)
	if err != nil {
		return fmt.Errorf("%w: names store: %v", ErrInvalidPack, err)
	}
	targetsStore, err := readValueStore(bytes.NewReader(targets), packOrder)
	if err != nil {
		return fmt.Errorf("%w: targets store: %v", ErrInvalidPack, err)
	}

	entries, err := readEntries(bytes.NewReader(body), namesStore, targetsStore)
	if err != nil {
		return err
	}
	a.entries = entries
	return nil
}

func readLenPrefixedBlock(r io.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, packOrder, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readEntries(r io.Reader, names, targets *valueStore) ([]readerEntry, error) {
	var count uint32
	if err := binary.Read(r, packOrder, &count); err != nil {
		return nil, err
	}

	entries := make([]readerEntry, count)
	for i := uint32(0); i < count; i++ {
		var kind uint8
		var nameIdx uint32
		if err := binary.Read(r, packOrder, &kind); err != nil {
			return nil, err
		}
		if err := binary.Read(r, packOrder, &nameIdx); err != nil {
			return nil, err
		}

		e := readerEntry{kind: EntryKind(kind), name: names.get(nameIdx)}

		for _, dst := range []*uint64{&e.parent, &e.owner, &e.group, &e.rights, &e.mtime} {
			if err := binary.Read(r, packOrder, dst); err != nil {
				return nil, err
			}
		}

		switch e.kind {
		case DirEntryKind:
			if err := binary.Read(r, packOrder, &e.firstChild); err != nil {
				return nil, err
			}
			if err := binary.Read(r, packOrder, &e.childCount); err != nil {
				return nil, err
			}
		case FileEntryKind:
			if err := binary.Read(r, packOrder, &e.contentPack); err != nil {
				return nil, err
			}
			if err := binary.Read(r, packOrder, &e.contentID); err != nil {
				return nil, err
			}
			if err := binary.Read(r, packOrder, &e.size); err != nil {
				return nil, err
			}
		case LinkEntryKind:
			var targetIdx uint32
			if err := binary.Read(r, packOrder, &targetIdx); err != nil {
				return nil, err
			}
			e.target = targets.get(targetIdx)
		default:
			return nil, fmt.Errorf("%w: unknown entry kind %d", ErrInvalidPack, kind)
		}

		entries[i] = e
	}
	return entries, nil
}

func (a *Archive) loadContentFooter(size uint64) error {
	tail := make([]byte, 12)
	if _, err := a.contentAt.ReadAt(tail, int64(size)-12); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}
	footerStart := packOrder.Uint64(tail[:8])

	footer := make([]byte, size-footerStart-12)
	if _, err := a.contentAt.ReadAt(footer, int64(footerStart)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	r := bytes.NewReader(footer)
	var count uint32
	if err := binary.Read(r, packOrder, &count); err != nil {
		return err
	}
	clusters := make([]clusterRecord, count)
	for i := uint32(0); i < count; i++ {
		var codec uint8
		if err := binary.Read(r, packOrder, &codec); err != nil {
			return err
		}
		c := clusterRecord{codec: CodecID(codec)}
		if err := binary.Read(r, packOrder, &c.offset); err != nil {
			return err
		}
		if err := binary.Read(r, packOrder, &c.compLen); err != nil {
			return err
		}
		if err := binary.Read(r, packOrder, &c.rawLen); err != nil {
			return err
		}
		clusters[i] = c
	}
	a.clusters = clusters
	return nil
}

// OpenContent returns a reader over the decompressed bytes of content id,
// which must have been issued by this archive's content pack.
func (a *Archive) OpenContent(id uint32) (io.ReadCloser, error) {
	if int(id) >= len(a.clusters) {
		return nil, fmt.Errorf("%w: content id %d out of range", ErrInvalidPack, id)
	}
	c := a.clusters[id]
	raw := make([]byte, c.compLen)
	if _, err := a.contentAt.ReadAt(raw, int64(contentPackHeaderSize+c.offset)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	codec, err := lookupCodec(c.codec)
	if err != nil {
		return nil, err
	}
	return codec.decompress(bytes.NewReader(raw))
}
