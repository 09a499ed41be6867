package arx

import (
	"compress/gzip"
	"io"
)

// gzip is kept as a third, universally-available option for archives meant
// to be read by tooling with no zstd/xz bindings at hand. Built directly on
// compress/gzip; see DESIGN.md for why no third-party codec backs it.
func init() {
	registerCodec(&codec{
		id: CodecGzip,
		compress: func(dst io.Writer, src []byte, level int) error {
			if level <= 0 {
				level = gzip.DefaultCompression
			}
			w, err := gzip.NewWriterLevel(dst, level)
			if err != nil {
				return err
			}
			if _, err := w.Write(src); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
		decompress: func(src io.Reader) (io.ReadCloser, error) {
			r, err := gzip.NewReader(src)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	})
}
