package svs

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
)

// mergeJPEGTables turns an abbreviated JPEG tile into a complete stream by
// splicing in the directory's JPEGTables: the tables without their EOI,
// then the tile without its SOI.
func mergeJPEGTables(tables, tile []byte) []byte {
	if len(tables) < 4 || len(tile) < 2 ||
		tables[0] != 0xFF || tables[1] != 0xD8 ||
		tile[0] != 0xFF || tile[1] != 0xD8 {
		return tile
	}
	tables = tables[:len(tables)-2]
	merged := make([]byte, 0, len(tables)+len(tile)-2)
	merged = append(merged, tables...)
	return append(merged, tile[2:]...)
}

func decodeJPEG(compressed []byte, info DecodeInfo) ([]byte, error) {
	if len(info.JPEGTables) > 0 {
		compressed = mergeJPEGTables(info.JPEGTables, compressed)
	}
	img, err := jpeg.Decode(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	return interleave(img), nil
}

// interleave flattens img into one byte per component, pixel-major: one
// component for grayscale images, three (RGB) otherwise.
func interleave(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if m, ok := img.(*image.Gray); ok {
		out := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(out[y*w:(y+1)*w], m.Pix[y*m.Stride:])
		}
		return out
	}

	out := make([]byte, 0, w*h*3)
	switch m := img.(type) {
	case *image.YCbCr:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := m.YCbCrAt(x, y)
				r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				out = append(out, r, g, bl)
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				out = append(out, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			}
		}
	}
	return out
}
