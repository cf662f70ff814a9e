package svs

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ThumbnailDirectory is the position of the thumbnail in the directory
// chain. SVS marks it by position only, there is no tag identifying it.
const ThumbnailDirectory = 1

// LayerInfo describes one image of the slide. TileOffsets and
// TileByteCounts are parallel and indexed by tile id. For strip images
// (thumbnail, label, macro) they hold the strips, the tile geometry is zero
// and RowsPerStrip is set instead.
type LayerInfo struct {
	Directory       int
	TileOffsets     []uint32
	TileByteCounts  []uint32
	NumTilesX       uint32
	NumTilesY       uint32
	TileWidth       uint32
	TileHeight      uint32
	ImageWidth      uint32
	ImageHeight     uint32
	RowsPerStrip    uint32
	Compression     uint16
	SamplesPerPixel uint16
	JPEGTables      []byte
}

// NumTiles is the number of addressable tiles (or strips).
func (l *LayerInfo) NumTiles() int { return len(l.TileByteCounts) }

// SVSHeaders is the pyramid derived from the directory chain. Layers[0] is
// the full-resolution image; directory 1 is the Thumbnail and not a layer.
type SVSHeaders struct {
	Layers      []LayerInfo
	Thumbnail   *LayerInfo
	Associated  map[string]*LayerInfo
	Description string
}

func ceilDiv(a, b uint32) uint32 {
	return uint32((uint64(a) + uint64(b) - 1) / uint64(b))
}

// deriveSVSHeaders walks the directories in chain order and builds the
// pyramid.
func deriveSVSHeaders(t *TIFF, logger log.Logger) (*SVSHeaders, error) {
	h := &SVSHeaders{Associated: make(map[string]*LayerInfo)}

	if t.HasTag(0, TagImageDescription) {
		raw, err := t.ASCII(0, TagImageDescription)
		if err != nil {
			return nil, err
		}
		if h.Description, err = decodeText(raw); err != nil {
			return nil, fmt.Errorf("decode image description: %w", err)
		}
	}

	for i := range t.Headers.Directories {
		switch {
		case i == ThumbnailDirectory:
			l, err := readStripImage(t, i)
			if err != nil {
				return nil, fmt.Errorf("thumbnail: %w", err)
			}
			h.Thumbnail = l
			level.Debug(logger).Log("msg", "derived thumbnail", "directory", i, "strips", l.NumTiles())

		case i > ThumbnailDirectory && isAssociated(t, i):
			l, err := readStripImage(t, i)
			if err != nil {
				return nil, fmt.Errorf("associated image in directory %d: %w", i, err)
			}
			name, err := associatedImageName(t, i)
			if err != nil {
				return nil, err
			}
			if name == "" || h.Associated[name] != nil {
				name = fmt.Sprintf("associated%d", i)
			}
			h.Associated[name] = l
			level.Debug(logger).Log("msg", "derived associated image", "directory", i, "name", name)

		default:
			l, err := readTiledLayer(t, i)
			if err != nil {
				return nil, err
			}
			if n := len(h.Layers); n > 0 {
				prev := &h.Layers[n-1]
				if l.ImageWidth >= prev.ImageWidth || l.ImageHeight >= prev.ImageHeight {
					level.Warn(logger).Log("msg", "layer does not shrink", "layer", n, "directory", i,
						"width", l.ImageWidth, "height", l.ImageHeight,
						"prev_width", prev.ImageWidth, "prev_height", prev.ImageHeight)
				}
			}
			h.Layers = append(h.Layers, *l)
			level.Debug(logger).Log("msg", "derived layer", "layer", len(h.Layers)-1, "directory", i,
				"width", l.ImageWidth, "height", l.ImageHeight,
				"tiles_x", l.NumTilesX, "tiles_y", l.NumTilesY)
		}
	}
	return h, nil
}

// isAssociated reports whether a directory after the thumbnail is a strip
// image flagged by NewSubfileType rather than a pyramid layer.
func isAssociated(t *TIFF, dir int) bool {
	if t.HasTag(dir, TagTileOffsets) || !t.HasTag(dir, TagStripOffsets) {
		return false
	}
	subfile, err := t.uintOr(dir, TagNewSubfileType, 0)
	return err == nil && subfile != 0
}

func associatedImageName(t *TIFF, dir int) (string, error) {
	if !t.HasTag(dir, TagImageDescription) {
		return "", nil
	}
	raw, err := t.ASCII(dir, TagImageDescription)
	if err != nil {
		return "", err
	}
	desc, err := decodeText(raw)
	if err != nil {
		return "", err
	}
	return associatedName(desc), nil
}

// readTileTables reads a pair of parallel offset/byte-count arrays.
func readTileTables(t *TIFF, dir int, offsetTag, countTag Tag) ([]uint32, []uint32, error) {
	offsets, err := t.Uints(dir, offsetTag)
	if err != nil {
		return nil, nil, err
	}
	counts, err := t.Uints(dir, countTag)
	if err != nil {
		return nil, nil, err
	}
	if len(offsets) != len(counts) {
		return nil, nil, FormatError(fmt.Sprintf("directory %d has %d %s but %d %s",
			dir, len(offsets), offsetTag, len(counts), countTag))
	}
	return offsets, counts, nil
}

// readCodingTags fills the optional tags the codec needs.
func readCodingTags(t *TIFF, dir int, l *LayerInfo) error {
	compression, err := t.uintOr(dir, TagCompression, uint32(CompressionNone))
	if err != nil {
		return err
	}
	spp, err := t.uintOr(dir, TagSamplesPerPixel, 1)
	if err != nil {
		return err
	}
	l.Compression = uint16(compression)
	l.SamplesPerPixel = uint16(spp)
	if t.HasTag(dir, TagJPEGTables) {
		if l.JPEGTables, err = t.TagValue(dir, TagJPEGTables); err != nil {
			return err
		}
	}
	return nil
}

func readTiledLayer(t *TIFF, dir int) (*LayerInfo, error) {
	offsets, counts, err := readTileTables(t, dir, TagTileOffsets, TagTileByteCounts)
	if err != nil {
		return nil, err
	}
	l := &LayerInfo{Directory: dir, TileOffsets: offsets, TileByteCounts: counts}

	for _, f := range []struct {
		tag Tag
		dst *uint32
	}{
		{TagTileWidth, &l.TileWidth},
		{TagTileLength, &l.TileHeight},
		{TagImageWidth, &l.ImageWidth},
		{TagImageLength, &l.ImageHeight},
	} {
		if *f.dst, err = t.Uint(dir, f.tag); err != nil {
			return nil, err
		}
	}
	if l.TileWidth == 0 || l.TileHeight == 0 {
		return nil, FormatError(fmt.Sprintf("zero tile size in directory %d", dir))
	}

	// A partially filled edge tile still counts as a full column or row.
	l.NumTilesX = ceilDiv(l.ImageWidth, l.TileWidth)
	l.NumTilesY = ceilDiv(l.ImageHeight, l.TileHeight)

	if err := readCodingTags(t, dir, l); err != nil {
		return nil, err
	}
	return l, nil
}

func readStripImage(t *TIFF, dir int) (*LayerInfo, error) {
	offsets, counts, err := readTileTables(t, dir, TagStripOffsets, TagStripByteCounts)
	if err != nil {
		return nil, err
	}
	l := &LayerInfo{Directory: dir, TileOffsets: offsets, TileByteCounts: counts}

	if l.ImageWidth, err = t.uintOr(dir, TagImageWidth, 0); err != nil {
		return nil, err
	}
	if l.ImageHeight, err = t.uintOr(dir, TagImageLength, 0); err != nil {
		return nil, err
	}
	if l.RowsPerStrip, err = t.uintOr(dir, TagRowsPerStrip, l.ImageHeight); err != nil {
		return nil, err
	}
	if err := readCodingTags(t, dir, l); err != nil {
		return nil, err
	}
	return l, nil
}
