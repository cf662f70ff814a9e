package svs

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/tiff/lzw"
)

// DecodeInfo is what a codec may need besides the compressed bytes.
type DecodeInfo struct {
	Width           int
	Height          int
	SamplesPerPixel int
	// JPEGTables holds the shared quantization and Huffman tables of
	// abbreviated JPEG tiles, if the directory carries them.
	JPEGTables []byte
}

// A Codec turns one compressed tile or strip into a flat pixel buffer of
// Height*Width*components bytes, pixel-major with the components of each
// pixel interleaved. It must either return the whole buffer or an error.
type Codec interface {
	Decode(compressed []byte, info DecodeInfo) ([]byte, error)
}

// CodecFunc adapts a function to the Codec interface.
type CodecFunc func(compressed []byte, info DecodeInfo) ([]byte, error)

func (f CodecFunc) Decode(compressed []byte, info DecodeInfo) ([]byte, error) {
	return f(compressed, info)
}

var (
	codecsMu sync.RWMutex
	codecs   = make(map[uint16]Codec)
)

// RegisterCodec installs c for a TIFF compression scheme for all Readers.
// It is how codecs not built in, such as JPEG 2000, are plugged in.
func RegisterCodec(compression uint16, c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[compression] = c
}

func lookupCodec(compression uint16) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	c, ok := codecs[compression]
	return c, ok
}

func (info DecodeInfo) pixelLen() int {
	return info.Width * info.Height * info.SamplesPerPixel
}

// trimPixels checks a decompressed buffer against the geometry. Encoders
// may pad the last tile or strip, so extra bytes are dropped.
func trimPixels(p []byte, info DecodeInfo) ([]byte, error) {
	n := info.pixelLen()
	if len(p) < n {
		return nil, FormatError(fmt.Sprintf("short pixel data: %d bytes, want %d", len(p), n))
	}
	return p[:n], nil
}

func decodeNone(compressed []byte, info DecodeInfo) ([]byte, error) {
	p, err := trimPixels(compressed, info)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

func decodeLZW(compressed []byte, info DecodeInfo) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(compressed), lzw.MSB, 8)
	defer r.Close()
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return trimPixels(p, info)
}

func decodeDeflate(compressed []byte, info DecodeInfo) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return trimPixels(p, info)
}

// zstdDecoder is shared; DecodeAll is safe for concurrent use.
var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

func decodeZSTD(compressed []byte, info DecodeInfo) ([]byte, error) {
	d, err := zstdDecoder()
	if err != nil {
		return nil, err
	}
	p, err := d.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}
	return trimPixels(p, info)
}
