package svs

import (
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/exp/mmap"
)

// Reader reads tiles of one SVS file. Headers are parsed once by Open and
// never change afterwards.
//
// Storage is accessed only through io.ReaderAt, so a tile read is a single
// positioned read with no shared cursor. A Reader is safe for concurrent use
// if its ReaderAt is, which holds for *os.File, the mmap storage of
// OpenFile and SeekerAt.
type Reader struct {
	r       io.ReaderAt
	tiff    *TIFF
	Headers *SVSHeaders
	// Properties is parsed from the base layer's ImageDescription.
	Properties *Properties
	Metrics    *Metrics

	logger log.Logger
	codecs map[uint16]Codec
	cache  *tileCache
}

// Open parses the TIFF directory chain of r and derives the pyramid.
func Open(r io.ReaderAt, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	t, err := OpenTIFF(r, o.maxDirectories)
	if err != nil {
		return nil, err
	}
	h, err := deriveSVSHeaders(t, o.logger)
	if err != nil {
		return nil, err
	}

	sr := &Reader{
		r:          r,
		tiff:       t,
		Headers:    h,
		Properties: ParseProperties(h.Description),
		Metrics:    NewMetrics(o.registerer),
		logger:     o.logger,
		codecs:     o.codecs,
	}
	if o.cacheBytes > 0 {
		if sr.cache, err = newTileCache(o.cacheBytes); err != nil {
			return nil, err
		}
	}
	level.Debug(o.logger).Log("msg", "opened slide", "directories", len(t.Headers.Directories),
		"layers", len(h.Layers), "associated", len(h.Associated))
	return sr, nil
}

// OpenFile memory-maps the file at path and opens it. Close unmaps it.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := Open(m, opts...)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Close releases the storage if it is an io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// TIFF exposes the underlying directory chain.
func (r *Reader) TIFF() *TIFF { return r.tiff }

// Layer returns the info of a pyramid layer.
func (r *Reader) Layer(layer int) (*LayerInfo, error) {
	if layer < 0 || layer >= len(r.Headers.Layers) {
		return nil, &TileError{Layer: layer, Tile: -1, Err: ErrInvalidLayer}
	}
	return &r.Headers.Layers[layer], nil
}

// Locate returns the byte range of a tile.
func (r *Reader) Locate(layer, tile int) (offset, length uint32, err error) {
	l, err := r.Layer(layer)
	if err != nil {
		return 0, 0, err
	}
	if tile < 0 || tile >= len(l.TileByteCounts) || tile >= len(l.TileOffsets) {
		return 0, 0, &TileError{Layer: layer, Tile: tile, Err: ErrInvalidTileID}
	}
	return l.TileOffsets[tile], l.TileByteCounts[tile], nil
}

// TileIndex maps a tile column and row to its tile id.
func (r *Reader) TileIndex(layer, x, y int) (int, error) {
	l, err := r.Layer(layer)
	if err != nil {
		return 0, err
	}
	if x < 0 || y < 0 || x >= int(l.NumTilesX) || y >= int(l.NumTilesY) {
		return 0, &TileError{Layer: layer, Tile: -1, Err: fmt.Errorf("%w: column %d, row %d", ErrInvalidTileID, x, y)}
	}
	return y*int(l.NumTilesX) + x, nil
}

// ReadTileCompressed returns the raw, still compressed bytes of a tile.
func (r *Reader) ReadTileCompressed(layer, tile int) ([]byte, error) {
	offset, length, err := r.Locate(layer, tile)
	if err != nil {
		return nil, err
	}
	key := tileKey{layer: layer, tile: tile}
	if r.cache != nil {
		if b, ok := r.cache.get(key); ok {
			r.Metrics.CacheHits.Inc()
			return b, nil
		}
		r.Metrics.CacheMisses.Inc()
	}

	b, err := readExact(r.r, uint64(length), int64(offset))
	if err != nil {
		return nil, err
	}
	r.Metrics.tileRead(layer, len(b))
	if r.cache != nil {
		r.cache.put(key, b)
	}
	return b, nil
}

// ReadTile reads and decodes a tile into a pixel buffer of
// TileHeight*TileWidth*components bytes.
func (r *Reader) ReadTile(layer, tile int) ([]byte, error) {
	b, err := r.ReadTileCompressed(layer, tile)
	if err != nil {
		return nil, err
	}
	l := &r.Headers.Layers[layer]
	return r.decode(l, b, int(l.TileWidth), int(l.TileHeight))
}

// ReadTileInto decodes a tile into dst and returns the number of bytes
// written. dst must hold at least TileWidth*TileHeight*SamplesPerPixel
// bytes; this is checked before any I/O.
func (r *Reader) ReadTileInto(layer, tile int, dst []byte) (int, error) {
	l, err := r.Layer(layer)
	if err != nil {
		return 0, err
	}
	need := int(l.TileWidth) * int(l.TileHeight) * int(l.SamplesPerPixel)
	if len(dst) < need {
		return 0, fmt.Errorf("%w: %d bytes, tile needs %d", ErrBufferTooSmall, len(dst), need)
	}
	p, err := r.ReadTile(layer, tile)
	if err != nil {
		return 0, err
	}
	if len(p) > len(dst) {
		return 0, fmt.Errorf("%w: %d bytes, decoded tile has %d", ErrBufferTooSmall, len(dst), len(p))
	}
	return copy(dst, p), nil
}

// LayerScale is the width of a layer relative to layer 0.
func (r *Reader) LayerScale(layer int) (float64, error) {
	l, err := r.Layer(layer)
	if err != nil {
		return 0, err
	}
	base := r.Headers.Layers[0].ImageWidth
	if base == 0 {
		return 0, FormatError("zero base layer width")
	}
	return float64(l.ImageWidth) / float64(base), nil
}

func (r *Reader) codec(compression uint16) (Codec, bool) {
	if c, ok := r.codecs[compression]; ok {
		return c, true
	}
	return lookupCodec(compression)
}

// decode runs the layer's codec over one compressed tile or strip of the
// given size.
func (r *Reader) decode(l *LayerInfo, compressed []byte, width, height int) ([]byte, error) {
	c, ok := r.codec(l.Compression)
	if !ok {
		r.Metrics.decodeFailed(l.Compression)
		return nil, &CodecError{Compression: l.Compression, Err: ErrUnsupportedCompression}
	}
	p, err := c.Decode(compressed, DecodeInfo{
		Width:           width,
		Height:          height,
		SamplesPerPixel: int(l.SamplesPerPixel),
		JPEGTables:      l.JPEGTables,
	})
	if err != nil {
		r.Metrics.decodeFailed(l.Compression)
		return nil, &CodecError{Compression: l.Compression, Err: err}
	}
	return p, nil
}
