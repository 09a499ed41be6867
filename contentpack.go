package arx

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"

	"github.com/google/uuid"
)

var packOrder = binary.LittleEndian

// contentPackMagic tags a standalone or embedded content pack body.
var contentPackMagic = [4]byte{'j', 'b', 'k', 'c'}

// CompressionConfig selects the cluster codec and, where supported, its
// compression level. Codec == CodecNone disables compression globally,
// bypassing the entropy check entirely.
type CompressionConfig struct {
	Codec CodecID
	Level int
}

// clusterRecord is what the content pack writer remembers about one cluster
// once it has been written, enough to build the pack's footer table and to
// answer reader-side lookups later.
type clusterRecord struct {
	codec      CodecID
	offset     uint64
	compLen    uint64
	rawLen     uint64
	blobOffset uint32 // offset of this content's bytes within the decompressed cluster
}

// ContentPackDescriptor is returned by ContentPackWriter.Finalize.
type ContentPackDescriptor struct {
	PackID   uint16
	Size     uint64
	Checksum uint32
	Location string // sidecar path, or "" when embedded in the manifest stream
	instance uuid.UUID
}

// ContentPackWriter: every AddContent call becomes its own cluster (arx
// does not coalesce small files into shared clusters), decided for
// compression by sampling its entropy unless compression is disabled
// outright.
type ContentPackWriter struct {
	packID   uint16
	comp     CompressionConfig
	progress Progress
	cache    CacheProgress

	buf      bytes.Buffer
	clusters []clusterRecord
	closed   bool
	finalBuf bytes.Buffer // populated by Finalize; the complete pack bytes
}

func newContentPackWriter(packID uint16, comp CompressionConfig, progress Progress, cache CacheProgress) *ContentPackWriter {
	if progress == nil {
		progress = NoopProgress
	}
	if cache == nil {
		cache = NoopCacheProgress
	}
	return &ContentPackWriter{packID: packID, comp: comp, progress: progress, cache: cache}
}

// AddContent reads src fully, decides whether to compress it, appends it as
// a new cluster and returns its content id. The returned id is the
// cluster's 0-based index.
func (w *ContentPackWriter) AddContent(src io.Reader) (uint32, error) {
	if w.closed {
		return 0, ErrBuilderClosed
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return 0, ErrCannotRead
	}

	codecID := w.comp.Codec
	if codecID != CodecNone && looksIncompressible(raw) {
		codecID = CodecNone
	}

	idx := len(w.clusters)
	compressed := codecID != CodecNone
	w.progress.NewCluster(idx, compressed)

	offset := uint64(w.buf.Len())
	c, err := lookupCodec(codecID)
	if err != nil {
		return 0, err
	}

	var body bytes.Buffer
	if err := c.compress(&body, raw, w.comp.Level); err != nil {
		return 0, ErrCodecFailure
	}
	// Compression that grows the payload is never worth keeping.
	if codecID != CodecNone && body.Len() >= len(raw) {
		codecID = CodecNone
		body.Reset()
		body.Write(raw)
		compressed = false
	}

	if _, err := w.buf.Write(body.Bytes()); err != nil {
		return 0, ErrIoFailure
	}

	w.clusters = append(w.clusters, clusterRecord{
		codec:   codecID,
		offset:  offset,
		compLen: uint64(body.Len()),
		rawLen:  uint64(len(raw)),
	})

	w.progress.HandleCluster(idx, compressed)
	return uint32(idx), nil
}

// clusterCount reports how many clusters have been written so far.
func (w *ContentPackWriter) clusterCount() int {
	return len(w.clusters)
}

func (w *ContentPackWriter) clusterAt(id uint32) clusterRecord {
	return w.clusters[id]
}

// Finalize writes the pack body plus a footer table (one record per
// cluster: codec, offset, compressed length, raw length) and a trailing
// crc32 checksum. The complete bytes are always kept for Bytes(); when path
// is non-empty (sidecar mode) they are also written to that file.
func (w *ContentPackWriter) Finalize(path string) (*ContentPackDescriptor, error) {
	if w.closed {
		return nil, ErrBuilderClosed
	}
	w.closed = true

	var out bytes.Buffer
	out.Write(contentPackMagic[:])
	binary.Write(&out, packOrder, w.packID)

	instance, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	out.Write(instance[:])

	out.Write(w.buf.Bytes())

	footerStart := out.Len()
	binary.Write(&out, packOrder, uint32(len(w.clusters)))
	for _, c := range w.clusters {
		binary.Write(&out, packOrder, uint8(c.codec))
		binary.Write(&out, packOrder, c.offset)
		binary.Write(&out, packOrder, c.compLen)
		binary.Write(&out, packOrder, c.rawLen)
	}
	binary.Write(&out, packOrder, uint64(footerStart))

	checksum := crc32.ChecksumIEEE(out.Bytes())
	binary.Write(&out, packOrder, checksum)

	w.finalBuf = out

	desc := &ContentPackDescriptor{
		PackID:   w.packID,
		Size:     uint64(out.Len()),
		Checksum: checksum,
		Location: path,
		instance: instance,
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
// manifest stream under the OneFile concat mode; valid only after Finalize
// has been called.
func (w *ContentPackWriter) Bytes() []byte {
	return w.finalBuf.Bytes()
}
