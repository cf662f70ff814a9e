// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

import "encoding/binary"

// Entry is one 12-byte IFD record.
type Entry struct {
	Tag   Tag
	Type  FieldType
	Count uint32
	// raw holds the last four bytes of the record. They are the value
	// itself when it fits in four bytes and an offset otherwise; use
	// Location to tell which.
	raw [4]byte
}

// DecodeEntry parses a single IFD entry. p must be exactly 12 bytes.
func DecodeEntry(p []byte) (Entry, error) {
	if len(p) != ifdLen {
		return Entry{}, FormatError("bad IFD entry")
	}
	ft, err := ParseFieldType(binary.LittleEndian.Uint16(p[2:4]))
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Tag:   Tag(binary.LittleEndian.Uint16(p[0:2])),
		Type:  ft,
		Count: binary.LittleEndian.Uint32(p[4:8]),
	}
	copy(e.raw[:], p[8:12])
	return e, nil
}

// Size is the byte length of the entry's value.
func (e Entry) Size() uint64 {
	return uint64(e.Type.Width()) * uint64(e.Count)
}

// Location resolves the dual meaning of the value field. If the value fits
// in four bytes it is returned as inline, sized exactly; otherwise inline
// is nil and offset is where the value starts in the file.
func (e Entry) Location() (inline []byte, offset uint32) {
	if size := e.Size(); size <= 4 {
		return e.raw[:size], 0
	}
	return nil, binary.LittleEndian.Uint32(e.raw[:])
}

// IsInline reports whether the value is stored in the entry itself.
func (e Entry) IsInline() bool {
	return e.Size() <= 4
}
