package svs

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func gray(v byte) color.RGBA { return color.RGBA{R: v, G: v, B: v, A: 0xff} }

func TestReadRegion(t *testing.T) {
	r := openTestSlide(t)

	// Crosses the corner of tiles 0, 1, 4 and 5.
	img, err := r.ReadRegion(0, image.Rect(30, 30, 40, 40))
	require.NoError(t, err)
	require.Equal(t, image.Rect(30, 30, 40, 40), img.Bounds())
	require.Equal(t, gray(1), img.RGBAAt(31, 31))
	require.Equal(t, gray(2), img.RGBAAt(32, 31))
	require.Equal(t, gray(5), img.RGBAAt(31, 32))
	require.Equal(t, gray(6), img.RGBAAt(39, 39))
}

func TestReadRegionEdges(t *testing.T) {
	r := openTestSlide(t)

	img, err := r.ReadRegion(0, image.Rect(90, 60, 110, 80))
	require.NoError(t, err)
	require.Equal(t, gray(11), img.RGBAAt(95, 65))
	require.Equal(t, gray(12), img.RGBAAt(99, 69))
	// Beyond the image, not the padding of the edge tile.
	require.Equal(t, color.RGBA{}, img.RGBAAt(100, 65))
	require.Equal(t, color.RGBA{}, img.RGBAAt(95, 70))

	img, err = r.ReadRegion(2, image.Rect(-10, -10, -1, -1))
	require.NoError(t, err)
	require.Equal(t, color.RGBA{}, img.RGBAAt(-5, -5))

	_, err = r.ReadRegion(3, image.Rect(0, 0, 1, 1))
	require.ErrorIs(t, err, ErrInvalidLayer)
}

func TestBestLayerForDownsample(t *testing.T) {
	r := openTestSlide(t)
	for d, want := range map[float64]int{
		1: 0, 1.5: 0, 2: 1, 3: 1, 3.99: 1, 4: 2, 100: 2,
	} {
		require.Equal(t, want, r.BestLayerForDownsample(d), "downsample %g", d)
	}

	ds, err := r.Downsample(2)
	require.NoError(t, err)
	require.Equal(t, 4.0, ds)
}

func TestReadRegionScaled(t *testing.T) {
	r := openTestSlide(t)

	img, err := r.ReadRegionScaled(image.Rect(0, 0, 100, 70), 2)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 50, 35), img.Bounds())
	require.Equal(t, gray(100), img.RGBAAt(5, 5))
	require.Equal(t, gray(101), img.RGBAAt(45, 5))
	require.Equal(t, gray(102), img.RGBAAt(5, 33))

	img, err = r.ReadRegionScaled(image.Rect(0, 0, 96, 66), 3)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 22), img.Bounds())

	_, err = r.ReadRegionScaled(image.Rect(0, 0, 10, 10), 0.5)
	require.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	r := openTestSlide(t)
	img, err := r.Thumbnail()
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 20, 14), img.Bounds())
	require.Equal(t, gray(50), img.RGBAAt(0, 0))
	require.Equal(t, gray(50), img.RGBAAt(19, 13))

	strips, err := r.ReadThumbnailCompressed()
	require.NoError(t, err)
	require.Len(t, strips, 1)
	require.Equal(t, bytes.Repeat([]byte{50}, 20*14*3), strips[0])
}

func TestThumbnailMissing(t *testing.T) {
	b := newTIFFBuilder()
	b.ifd(tiledLayer(b, testWidth, testHeight, 1)...)
	r, err := Open(bytes.NewReader(b.bytes()))
	require.NoError(t, err)
	_, err = r.Thumbnail()
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.ReadThumbnailCompressed()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStripReadsCounted(t *testing.T) {
	r := openTestSlide(t)
	_, err := r.Thumbnail()
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(r.Metrics.StripReads))
	require.Equal(t, float64(20*14*3), testutil.ToFloat64(r.Metrics.TileBytesRead))

	_, err = r.ReadAssociatedCompressed("label")
	require.NoError(t, err)
	require.Equal(t, float64(2), testutil.ToFloat64(r.Metrics.StripReads))
	require.Equal(t, float64(20*14*3+10*8*3), testutil.ToFloat64(r.Metrics.TileBytesRead))

	// Strips are not tiles of any layer.
	require.Zero(t, testutil.CollectAndCount(r.Metrics.TileReads))
}

// unevenSlide has a 100x70 base and a 50x36 layer: the height is rounded
// up while the width halves exactly.
func unevenSlide() []byte {
	b := newTIFFBuilder()
	b.ifd(tiledLayer(b, testWidth, testHeight, 1)...)
	b.ifd(stripImage(b, 20, 14, 50)...)
	b.ifd(tiledLayer(b, 50, 36, 100)...)
	return b.bytes()
}

func TestLayerRectPerAxis(t *testing.T) {
	r, err := Open(bytes.NewReader(unevenSlide()))
	require.NoError(t, err)

	lr, err := r.layerRect(1, image.Rect(0, 0, 100, 70))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 50, 36), lr)

	lr, err = r.layerRect(1, image.Rect(20, 35, 60, 70))
	require.NoError(t, err)
	require.Equal(t, image.Rect(10, 18, 30, 36), lr)

	// Negative origins round down, not toward zero.
	lr, err = r.layerRect(1, image.Rect(-3, -3, 4, 4))
	require.NoError(t, err)
	require.Equal(t, image.Rect(-2, -2, 2, 3), lr)

	lr, err = r.layerRect(0, image.Rect(-3, 5, 7, 9))
	require.NoError(t, err)
	require.Equal(t, image.Rect(-3, 5, 7, 9), lr)

	_, err = r.layerRect(2, image.Rect(0, 0, 1, 1))
	require.ErrorIs(t, err, ErrInvalidLayer)
}

func TestReadRegionScaledUnevenLayer(t *testing.T) {
	r, err := Open(bytes.NewReader(unevenSlide()))
	require.NoError(t, err)

	// The bottom rows of layer 0 map into the second tile row of layer 1.
	img, err := r.ReadRegionScaled(image.Rect(0, 66, 100, 70), 2)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 50, 2), img.Bounds())
	require.Equal(t, gray(102), img.RGBAAt(5, 1))
}

func TestAssociated(t *testing.T) {
	r := openTestSlide(t)
	img, err := r.Associated("label")
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 10, 8), img.Bounds())
	require.Equal(t, gray(77), img.RGBAAt(9, 7))

	strips, err := r.ReadAssociatedCompressed("label")
	require.NoError(t, err)
	require.Equal(t, [][]byte{bytes.Repeat([]byte{77}, 10*8*3)}, strips)

	_, err = r.Associated("macro")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.ReadAssociatedCompressed("macro")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMultiStripImage(t *testing.T) {
	b := newTIFFBuilder()
	b.ifd(tiledLayer(b, testWidth, testHeight, 1)...)
	top := b.blob(bytes.Repeat([]byte{10}, 6*4*3))
	bottom := b.blob(bytes.Repeat([]byte{20}, 6*3*3))
	b.ifd(
		longVal(TagImageWidth, 6),
		longVal(TagImageLength, 7),
		longVals(TagStripOffsets, top, bottom),
		shortVal(TagSamplesPerPixel, 3),
		longVal(TagRowsPerStrip, 4),
		longVals(TagStripByteCounts, 6*4*3, 6*3*3),
	)
	r, err := Open(bytes.NewReader(b.bytes()))
	require.NoError(t, err)

	img, err := r.Thumbnail()
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 6, 7), img.Bounds())
	require.Equal(t, gray(10), img.RGBAAt(5, 3))
	require.Equal(t, gray(20), img.RGBAAt(0, 4))
	require.Equal(t, gray(20), img.RGBAAt(5, 6))
}
