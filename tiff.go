// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svs reads Aperio SVS whole-slide images.
//
// An SVS file is a little-endian TIFF whose directories form an image
// pyramid: directory 0 is the full-resolution layer, directory 1 the
// thumbnail and the following tiled directories are successively smaller
// layers, optionally followed by label and macro images. Tiles are
// addressed by (layer, tile id) and returned either compressed, as stored,
// or decoded into an interleaved pixel buffer by a registered Codec.
package svs

import (
	"encoding/binary"
	"io"
	"math"
)

// TIFF pairs the parsed directory chain with the storage it was read from,
// so entry values stored out of line can be fetched.
type TIFF struct {
	r       io.ReaderAt
	Headers *Headers
}

// OpenTIFF parses the header and directory chain of r.
func OpenTIFF(r io.ReaderAt, maxDirectories int) (*TIFF, error) {
	h, err := ReadHeaders(r, maxDirectories)
	if err != nil {
		return nil, err
	}
	return &TIFF{r: r, Headers: h}, nil
}

// Value returns the raw bytes of an entry's value. The slice always holds
// exactly Type.Width()*Count bytes; inline values are returned without any
// I/O.
func (t *TIFF) Value(e Entry) ([]byte, error) {
	inline, off := e.Location()
	if inline != nil {
		return append([]byte(nil), inline...), nil
	}
	return readExact(t.r, e.Size(), int64(off))
}

func (t *TIFF) entry(dir int, tag Tag) (Entry, error) {
	if dir < 0 || dir >= len(t.Headers.Directories) {
		return Entry{}, &TagNotFoundError{Tag: tag, Directory: dir}
	}
	e, ok := t.Headers.Directories[dir].Entry(tag)
	if !ok {
		return Entry{}, &TagNotFoundError{Tag: tag, Directory: dir}
	}
	return e, nil
}

// HasTag reports whether directory dir carries tag.
func (t *TIFF) HasTag(dir int, tag Tag) bool {
	_, err := t.entry(dir, tag)
	return err == nil
}

// TagValue returns the raw value of tag in directory dir.
func (t *TIFF) TagValue(dir int, tag Tag) ([]byte, error) {
	e, err := t.entry(dir, tag)
	if err != nil {
		return nil, err
	}
	return t.Value(e)
}

// Uints decodes an integer-valued tag, which must be of the Byte, Short or
// Long type, into one uint32 per element.
func (t *TIFF) Uints(dir int, tag Tag) ([]uint32, error) {
	e, err := t.entry(dir, tag)
	if err != nil {
		return nil, err
	}
	if e.Count > math.MaxInt32/8 {
		return nil, FormatError("IFD data too large")
	}
	raw, err := t.Value(e)
	if err != nil {
		return nil, err
	}

	u := make([]uint32, e.Count)
	switch e.Type {
	case Byte:
		for i := range u {
			u[i] = uint32(raw[i])
		}
	case Short:
		for i := range u {
			u[i] = uint32(binary.LittleEndian.Uint16(raw[2*i:]))
		}
	case Long:
		for i := range u {
			u[i] = binary.LittleEndian.Uint32(raw[4*i:])
		}
	default:
		return nil, UnsupportedError("data type " + e.Type.String() + " for tag " + tag.String())
	}
	return u, nil
}

// Uint returns the first element of an integer-valued tag.
func (t *TIFF) Uint(dir int, tag Tag) (uint32, error) {
	u, err := t.Uints(dir, tag)
	if err != nil {
		return 0, err
	}
	if len(u) == 0 {
		return 0, FormatError("empty " + tag.String())
	}
	return u[0], nil
}

// uintOr is Uint with a default for a missing tag. Other errors still fail.
func (t *TIFF) uintOr(dir int, tag Tag, def uint32) (uint32, error) {
	if !t.HasTag(dir, tag) {
		return def, nil
	}
	return t.Uint(dir, tag)
}

// ASCII returns an ASCII tag as raw bytes without the terminating NUL.
func (t *TIFF) ASCII(dir int, tag Tag) ([]byte, error) {
	raw, err := t.TagValue(dir, tag)
	if err != nil {
		return nil, err
	}
	if n := len(raw); n > 0 && raw[n-1] == 0 {
		raw = raw[:n-1]
	}
	return raw, nil
}
