package arx

import (
	"fmt"
	"io"
)

// CodecID identifies the compression algorithm used for one cluster of a
// content pack. It is written verbatim into the cluster's record in the
// content pack footer table so the reader side can pick a matching
// decompressor without configuration.
type CodecID uint8

const (
	// CodecNone stores a cluster's payload verbatim, either because
	// compression was disabled globally or because the payload's entropy
	// made compression not worth attempting.
	CodecNone CodecID = 0
	CodecZstd CodecID = 1
	CodecXz   CodecID = 2
	CodecGzip CodecID = 3
)

func (c CodecID) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecXz:
		return "xz"
	case CodecGzip:
		return "gzip"
	default:
		return fmt.Sprintf("CodecID(%d)", c)
	}
}

// codec bundles a cluster compressor with its matching decompressor.
// compress writes the compressed form of src to dst and reports only an
// error; AddContent itself falls back to CodecNone when the compressed
// output is not smaller than the input.
type codec struct {
	id         CodecID
	compress   func(dst io.Writer, src []byte, level int) error
	decompress func(src io.Reader) (io.ReadCloser, error)
}

// codecRegistry maps a CodecID to its implementation. Populated by each
// codec_*.go file's init, keyed directly by the arx on-disk codec id.
var codecRegistry = map[CodecID]*codec{}

func registerCodec(c *codec) {
	codecRegistry[c.id] = c
}

func lookupCodec(id CodecID) (*codec, error) {
	c, ok := codecRegistry[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownCodec, id)
	}
	return c, nil
}

func init() {
	registerCodec(&codec{id: CodecNone,
		compress: func(dst io.Writer, src []byte, level int) error {
			_, err := dst.Write(src)
			return err
		},
		decompress: func(src io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(src), nil
		},
	})
}
