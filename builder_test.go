package svs

import (
	"bytes"
	"encoding/binary"
)

// A testEntry is an IFD entry before serialization. data holds exactly
// Width*count bytes and is placed out of line when longer than four.
type testEntry struct {
	tag   Tag
	typ   FieldType
	count uint32
	data  []byte
}

func shortVal(tag Tag, v uint16) testEntry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return testEntry{tag, Short, 1, b}
}

func shortVals(tag Tag, vs ...uint16) testEntry {
	b := make([]byte, 2*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return testEntry{tag, Short, uint32(len(vs)), b}
}

func longVal(tag Tag, v uint32) testEntry {
	return longVals(tag, v)
}

func longVals(tag Tag, vs ...uint32) testEntry {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return testEntry{tag, Long, uint32(len(vs)), b}
}

func asciiVal(tag Tag, s string) testEntry {
	return testEntry{tag, ASCII, uint32(len(s) + 1), append([]byte(s), 0)}
}

func rawVal(tag Tag, typ FieldType, data []byte) testEntry {
	return testEntry{tag, typ, uint32(len(data)) / typ.Width(), data}
}

// without drops the entry for tag.
func without(entries []testEntry, tag Tag) []testEntry {
	out := make([]testEntry, 0, len(entries))
	for _, e := range entries {
		if e.tag != tag {
			out = append(out, e)
		}
	}
	return out
}

// replace swaps in e for the entry with the same tag, or appends it.
func replace(entries []testEntry, e testEntry) []testEntry {
	out := without(entries, e.tag)
	return append(out, e)
}

// entryBytes serializes a single 12-byte IFD entry.
func entryBytes(tag, typ uint16, count, value uint32) []byte {
	p := make([]byte, ifdLen)
	binary.LittleEndian.PutUint16(p[0:], tag)
	binary.LittleEndian.PutUint16(p[2:], typ)
	binary.LittleEndian.PutUint32(p[4:], count)
	binary.LittleEndian.PutUint32(p[8:], value)
	return p
}

// tiffBuilder lays out a little-endian TIFF sequentially: blobs and
// directories are appended, and each directory is linked from the previous
// one (or the header).
type tiffBuilder struct {
	buf     []byte
	nextPos int
}

func newTIFFBuilder() *tiffBuilder {
	b := &tiffBuilder{buf: make([]byte, headerLen), nextPos: 4}
	copy(b.buf, leMarker)
	binary.LittleEndian.PutUint16(b.buf[2:], tiffMagic)
	return b
}

func (b *tiffBuilder) align() {
	if len(b.buf)%2 == 1 {
		b.buf = append(b.buf, 0)
	}
}

// blob appends data and returns its offset.
func (b *tiffBuilder) blob(data []byte) uint32 {
	b.align()
	off := uint32(len(b.buf))
	b.buf = append(b.buf, data...)
	return off
}

// ifd appends a directory holding entries in the given order and links it
// into the chain.
func (b *tiffBuilder) ifd(entries ...testEntry) uint32 {
	vals := make([][4]byte, len(entries))
	for i, e := range entries {
		if len(e.data) > 4 {
			binary.LittleEndian.PutUint32(vals[i][:], b.blob(e.data))
		} else {
			copy(vals[i][:], e.data)
		}
	}
	b.align()
	off := uint32(len(b.buf))
	binary.LittleEndian.PutUint32(b.buf[b.nextPos:], off)

	p := make([]byte, 2+ifdLen*len(entries)+4)
	binary.LittleEndian.PutUint16(p, uint16(len(entries)))
	for i, e := range entries {
		q := p[2+i*ifdLen:]
		binary.LittleEndian.PutUint16(q[0:], uint16(e.tag))
		binary.LittleEndian.PutUint16(q[2:], uint16(e.typ))
		binary.LittleEndian.PutUint32(q[4:], e.count)
		copy(q[8:12], vals[i][:])
	}
	b.buf = append(b.buf, p...)
	b.nextPos = int(off) + len(p) - 4
	return off
}

func (b *tiffBuilder) bytes() []byte { return b.buf }

const (
	testTile   = 32
	testWidth  = 100
	testHeight = 70
	testSPP    = 3
	testLabel  = "Aperio Image Library v10.0.50\nlabel 10x8"
)

var testDescription = "Aperio Image Library v11.2.1 \r\n100x70 [0,0 100x70] (32x32) RAW|AppMag = 20|MPP = 0.4990|ScanScope ID = SS1234"

// tiledLayer stores uncompressed 32x32 RGB tiles for a w x h layer, tile i
// filled with the byte base+i, and returns the layer's entries.
func tiledLayer(b *tiffBuilder, w, h uint32, base byte) []testEntry {
	nx, ny := ceilDiv(w, testTile), ceilDiv(h, testTile)
	var offsets, counts []uint32
	for i := 0; i < int(nx*ny); i++ {
		data := bytes.Repeat([]byte{base + byte(i)}, testTile*testTile*testSPP)
		offsets = append(offsets, b.blob(data))
		counts = append(counts, uint32(len(data)))
	}
	return []testEntry{
		longVal(TagImageWidth, w),
		longVal(TagImageLength, h),
		shortVal(TagCompression, CompressionNone),
		shortVal(TagSamplesPerPixel, testSPP),
		shortVal(TagTileWidth, testTile),
		shortVal(TagTileLength, testTile),
		longVals(TagTileOffsets, offsets...),
		longVals(TagTileByteCounts, counts...),
	}
}

// stripImage stores a single-strip uncompressed RGB image filled with v.
func stripImage(b *tiffBuilder, w, h uint32, v byte) []testEntry {
	data := bytes.Repeat([]byte{v}, int(w*h)*testSPP)
	return []testEntry{
		longVal(TagImageWidth, w),
		longVal(TagImageLength, h),
		shortVal(TagCompression, CompressionNone),
		longVal(TagStripOffsets, b.blob(data)),
		shortVal(TagSamplesPerPixel, testSPP),
		longVal(TagRowsPerStrip, h),
		longVal(TagStripByteCounts, uint32(len(data))),
	}
}

// newTestSlide builds a slide with a 100x70 base layer (4x3 tiles), a 20x14
// thumbnail, layers of 50x35 and 25x17 and a label.
func newTestSlide() []byte {
	b := newTIFFBuilder()
	b.ifd(append(tiledLayer(b, testWidth, testHeight, 1), asciiVal(TagImageDescription, testDescription))...)
	b.ifd(stripImage(b, 20, 14, 50)...)
	b.ifd(tiledLayer(b, 50, 35, 100)...)
	b.ifd(tiledLayer(b, 25, 17, 200)...)
	b.ifd(append(stripImage(b, 10, 8, 77),
		longVal(TagNewSubfileType, 1),
		asciiVal(TagImageDescription, testLabel))...)
	return b.bytes()
}
