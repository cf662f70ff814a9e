package svs

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// pixelsToRGBA wraps a decoded buffer of w*h pixels as an RGBA image. The
// component count is taken from the buffer length: 1 (gray), 3 (RGB) or
// 4 (RGBA).
func pixelsToRGBA(p []byte, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 || len(p)%(w*h) != 0 {
		return nil, FormatError(fmt.Sprintf("%d bytes of pixels for %dx%d", len(p), w, h))
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	switch comps := len(p) / (w * h); comps {
	case 1:
		for i, v := range p {
			px := img.Pix[4*i : 4*i+4 : 4*i+4]
			px[0], px[1], px[2], px[3] = v, v, v, 0xff
		}
	case 3:
		for i := 0; i < w*h; i++ {
			px := img.Pix[4*i : 4*i+4 : 4*i+4]
			px[0], px[1], px[2], px[3] = p[3*i], p[3*i+1], p[3*i+2], 0xff
		}
	case 4:
		copy(img.Pix, p)
	default:
		return nil, UnsupportedError(fmt.Sprintf("%d components per pixel", comps))
	}
	return img, nil
}

// ReadRegion decodes the tiles of a layer covering rect, given in that
// layer's pixel coordinates, and stitches them. Parts of rect outside the
// layer stay transparent.
func (r *Reader) ReadRegion(layer int, rect image.Rectangle) (*image.RGBA, error) {
	l, err := r.Layer(layer)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(rect)
	area := rect.Intersect(image.Rect(0, 0, int(l.ImageWidth), int(l.ImageHeight)))
	if area.Empty() {
		return dst, nil
	}

	tw, th := int(l.TileWidth), int(l.TileHeight)
	for ty := area.Min.Y / th; ty <= (area.Max.Y-1)/th; ty++ {
		for tx := area.Min.X / tw; tx <= (area.Max.X-1)/tw; tx++ {
			id, err := r.TileIndex(layer, tx, ty)
			if err != nil {
				return nil, err
			}
			p, err := r.ReadTile(layer, id)
			if err != nil {
				return nil, err
			}
			tile, err := pixelsToRGBA(p, tw, th)
			if err != nil {
				return nil, fmt.Errorf("layer %d tile %d: %w", layer, id, err)
			}
			origin := image.Pt(tx*tw, ty*th)
			tr := tile.Bounds().Add(origin).Intersect(area)
			draw.Draw(dst, tr, tile, tr.Min.Sub(origin), draw.Src)
		}
	}
	return dst, nil
}

// Downsample is how many layer 0 pixels one pixel of the layer spans
// horizontally.
func (r *Reader) Downsample(layer int) (float64, error) {
	s, err := r.LayerScale(layer)
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return math.Inf(1), nil
	}
	return 1 / s, nil
}

// BestLayerForDownsample returns the smallest layer that still has at
// least the resolution asked for, i.e. the layer with the largest
// downsample not exceeding d.
func (r *Reader) BestLayerForDownsample(d float64) int {
	best := 0
	for i := 1; i < len(r.Headers.Layers); i++ {
		ds, err := r.Downsample(i)
		if err != nil || ds > d {
			continue
		}
		if bd, _ := r.Downsample(best); ds > bd {
			best = i
		}
	}
	return best
}

// layerRect maps rect from layer 0 coordinates onto a layer. Layer sizes
// are rounded independently per axis, so each axis uses its own ratio. The
// result covers every layer pixel touched by rect.
func (r *Reader) layerRect(layer int, rect image.Rectangle) (image.Rectangle, error) {
	l, err := r.Layer(layer)
	if err != nil {
		return image.Rectangle{}, err
	}
	base := &r.Headers.Layers[0]
	if base.ImageWidth == 0 || base.ImageHeight == 0 {
		return image.Rectangle{}, FormatError("zero base layer size")
	}
	// Multiply first so exact boundaries stay exact.
	x := func(v int, f func(float64) float64) int {
		return int(f(float64(v) * float64(l.ImageWidth) / float64(base.ImageWidth)))
	}
	y := func(v int, f func(float64) float64) int {
		return int(f(float64(v) * float64(l.ImageHeight) / float64(base.ImageHeight)))
	}
	return image.Rect(
		x(rect.Min.X, math.Floor), y(rect.Min.Y, math.Floor),
		x(rect.Max.X, math.Ceil), y(rect.Max.Y, math.Ceil),
	), nil
}

// ReadRegionScaled reads rect, given in layer 0 coordinates, at the given
// downsample. It reads from the best layer and scales the remainder.
func (r *Reader) ReadRegionScaled(rect image.Rectangle, downsample float64) (*image.RGBA, error) {
	if downsample < 1 {
		return nil, fmt.Errorf("svs: downsample %g is below 1", downsample)
	}
	layer := r.BestLayerForDownsample(downsample)
	lr, err := r.layerRect(layer, rect)
	if err != nil {
		return nil, err
	}
	src, err := r.ReadRegion(layer, lr)
	if err != nil {
		return nil, err
	}
	w := int(math.Round(float64(rect.Dx()) / downsample))
	h := int(math.Round(float64(rect.Dy()) / downsample))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// readStrips decodes a strip image, one strip at a time, top to bottom.
func (r *Reader) readStrips(l *LayerInfo) (*image.RGBA, error) {
	w, h := int(l.ImageWidth), int(l.ImageHeight)
	if w == 0 || h == 0 {
		return nil, FormatError(fmt.Sprintf("strip image in directory %d has no size", l.Directory))
	}
	rows := int(l.RowsPerStrip)
	if rows <= 0 || rows > h {
		rows = h
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range l.TileByteCounts {
		y := i * rows
		if y >= h {
			break
		}
		sh := rows
		if y+sh > h {
			sh = h - y
		}
		b, err := r.readStrip(l, i)
		if err != nil {
			return nil, err
		}
		p, err := r.decode(l, b, w, sh)
		if err != nil {
			return nil, err
		}
		strip, err := pixelsToRGBA(p, w, sh)
		if err != nil {
			return nil, fmt.Errorf("directory %d strip %d: %w", l.Directory, i, err)
		}
		draw.Draw(dst, strip.Bounds().Add(image.Pt(0, y)), strip, image.Point{}, draw.Src)
	}
	return dst, nil
}

// readStrip reads strip i of a strip image as stored.
func (r *Reader) readStrip(l *LayerInfo, i int) ([]byte, error) {
	b, err := readExact(r.r, uint64(l.TileByteCounts[i]), int64(l.TileOffsets[i]))
	if err != nil {
		return nil, err
	}
	r.Metrics.stripRead(len(b))
	return b, nil
}

func (r *Reader) readStripsCompressed(l *LayerInfo) ([][]byte, error) {
	strips := make([][]byte, len(l.TileByteCounts))
	for i := range strips {
		b, err := r.readStrip(l, i)
		if err != nil {
			return nil, err
		}
		strips[i] = b
	}
	return strips, nil
}

// ReadThumbnailCompressed returns the thumbnail's strips as stored.
func (r *Reader) ReadThumbnailCompressed() ([][]byte, error) {
	if r.Headers.Thumbnail == nil {
		return nil, fmt.Errorf("%w: thumbnail", ErrNotFound)
	}
	return r.readStripsCompressed(r.Headers.Thumbnail)
}

// ReadAssociatedCompressed returns the strips of an associated image as
// stored.
func (r *Reader) ReadAssociatedCompressed(name string) ([][]byte, error) {
	l, ok := r.Headers.Associated[name]
	if !ok {
		return nil, fmt.Errorf("%w: associated image %q", ErrNotFound, name)
	}
	return r.readStripsCompressed(l)
}

// Thumbnail decodes the thumbnail image.
func (r *Reader) Thumbnail() (*image.RGBA, error) {
	if r.Headers.Thumbnail == nil {
		return nil, fmt.Errorf("%w: thumbnail", ErrNotFound)
	}
	return r.readStrips(r.Headers.Thumbnail)
}

// Associated decodes an associated image such as "label" or "macro".
func (r *Reader) Associated(name string) (*image.RGBA, error) {
	l, ok := r.Headers.Associated[name]
	if !ok {
		return nil, fmt.Errorf("%w: associated image %q", ErrNotFound, name)
	}
	return r.readStrips(l)
}
