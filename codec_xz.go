package arx

import (
	"io"

	"github.com/ulikunitz/xz"
)

// xz trades compression speed for ratio; offered as a selectable alternative
// to zstd.
func init() {
	registerCodec(&codec{
		id: CodecXz,
		compress: func(dst io.Writer, src []byte, level int) error {
			w, err := xz.NewWriter(dst)
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
			r, err := xz.NewReader(src)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(r), nil
		},
	})
}
