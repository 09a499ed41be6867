package arx

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstd is the default codec, registered against klauspost/compress/zstd.
func init() {
	registerCodec(&codec{
		id: CodecZstd,
		compress: func(dst io.Writer, src []byte, level int) error {
			opts := []zstd.EOption{}
			if level > 0 {
				opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
			}
			w, err := zstd.NewWriter(dst, opts...)
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
			r, err := zstd.NewReader(src)
			if err != nil {
				return nil, err
			}
			return r.IOReadCloser(), nil
		},
	})
}
