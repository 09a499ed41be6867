package arx

import (
	"bytes"
	"crypto/rand"
	"testing"
)

type recordingProgress struct {
	newCalls    []bool
	handleCalls []bool
}

func (p *recordingProgress) NewCluster(idx int, compressed bool)    { p.newCalls = append(p.newCalls, compressed) }
func (p *recordingProgress) HandleCluster(idx int, compressed bool) { p.handleCalls = append(p.handleCalls, compressed) }

func TestContentPackWriterNoCompressionCeiling(t *testing.T) {
	// When compression=none, no cluster is compressed, even for highly
	// compressible input.
	w := newContentPackWriter(1, CompressionConfig{Codec: CodecNone}, nil, nil)

	compressible := bytes.Repeat([]byte("aaaaaaaaaa"), 1000)
	id, err := w.AddContent(bytes.NewReader(compressible))
	if err != nil {
		t.Fatalf("AddContent: %v", err)
	}

	if c := w.clusterAt(id); c.codec != CodecNone {
		t.Errorf("cluster codec = %s, want none", c.codec)
	}
}

func TestContentPackWriterEntropyGating(t *testing.T) {
	w := newContentPackWriter(1, CompressionConfig{Codec: CodecZstd}, nil, nil)

	compressible := bytes.Repeat([]byte("hello world, this is compressible text. "), 500)
	id0, err := w.AddContent(bytes.NewReader(compressible))
	if err != nil {
		t.Fatalf("AddContent(compressible): %v", err)
	}
	if c := w.clusterAt(id0); c.codec != CodecZstd {
		t.Errorf("compressible payload codec = %s, want zstd", c.codec)
	}

	random := make([]byte, 16384)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	id1, err := w.AddContent(bytes.NewReader(random))
	if err != nil {
		t.Fatalf("AddContent(random): %v", err)
	}
	if c := w.clusterAt(id1); c.codec != CodecNone {
		t.Errorf("high-entropy payload codec = %s, want none (entropy should gate compression)", c.codec)
	}
}

func TestContentPackWriterProgressHooks(t *testing.T) {
	prog := &recordingProgress{}
	w := newContentPackWriter(1, CompressionConfig{Codec: CodecZstd}, prog, nil)

	if _, err := w.AddContent(bytes.NewReader([]byte("some content"))); err != nil {
		t.Fatalf("AddContent: %v", err)
	}
	if len(prog.newCalls) != 1 || len(prog.handleCalls) != 1 {
		t.Errorf("NewCluster/HandleCluster called %d/%d times, want 1/1", len(prog.newCalls), len(prog.handleCalls))
	}
}

func TestContentPackWriterFinalizeEmbedded(t *testing.T) {
	w := newContentPackWriter(1, CompressionConfig{Codec: CodecZstd}, nil, nil)
	if _, err := w.AddContent(bytes.NewReader([]byte("payload"))); err != nil {
		t.Fatalf("AddContent: %v", err)
	}

	desc, err := w.Finalize("")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if desc.Location != "" {
		t.Errorf("Location = %q, want empty for embedded mode", desc.Location)
	}
	if len(w.Bytes()) == 0 {
		t.Error("Bytes() empty after Finalize")
	}
	if !bytes.Equal(w.Bytes()[:4], contentPackMagic[:]) {
		t.Errorf("magic = %q, want %q", w.Bytes()[:4], contentPackMagic)
	}
}

func TestContentPackWriterClosedAfterFinalize(t *testing.T) {
	w := newContentPackWriter(1, CompressionConfig{Codec: CodecNone}, nil, nil)
	if _, err := w.Finalize(""); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := w.AddContent(bytes.NewReader([]byte("x"))); err != ErrBuilderClosed {
		t.Errorf("AddContent after Finalize error = %v, want ErrBuilderClosed", err)
	}
	if _, err := w.Finalize(""); err != ErrBuilderClosed {
		t.Errorf("second Finalize error = %v, want ErrBuilderClosed", err)
	}
}
