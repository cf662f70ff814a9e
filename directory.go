// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

import (
	"encoding/binary"
	"io"
)

// DefaultMaxDirectories bounds the directory chain. Real slides have well
// under twenty directories.
const DefaultMaxDirectories = 1024

// Directory is one IFD. Entries keep their on-disk order.
type Directory struct {
	Offset  uint32
	Entries []Entry
}

// Entry returns the first entry with the given tag.
func (d *Directory) Entry(tag Tag) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}

// Headers is the parsed TIFF structure: the byte order and the directories
// in chain order.
type Headers struct {
	Endianness  Endianness
	Directories []Directory
}

// ReadHeaders validates the TIFF header and walks the directory chain
// until a zero next offset. A chain that revisits an offset fails with
// ErrDirectoryLoop and one longer than maxDirectories with
// ErrTooManyDirectories; maxDirectories <= 0 means DefaultMaxDirectories.
func ReadHeaders(r io.ReaderAt, maxDirectories int) (*Headers, error) {
	if maxDirectories <= 0 {
		maxDirectories = DefaultMaxDirectories
	}

	var p [headerLen]byte
	if err := readFullAt(r, p[:], 0); err != nil {
		return nil, err
	}
	order, err := DetectEndianness(p[0:2])
	if err != nil {
		return nil, err
	}
	if order != LittleEndian {
		return nil, ErrBigEndian
	}
	if binary.LittleEndian.Uint16(p[2:4]) != tiffMagic {
		return nil, ErrNotTIFF
	}

	next := binary.LittleEndian.Uint32(p[4:8])
	if next == 0 {
		return nil, ErrNoDirectories
	}

	h := &Headers{Endianness: order}
	seen := make(map[uint32]bool)
	for next != 0 {
		if seen[next] {
			return nil, ErrDirectoryLoop
		}
		if len(h.Directories) == maxDirectories {
			return nil, ErrTooManyDirectories
		}
		seen[next] = true

		dir, following, err := readDirectory(r, next)
		if err != nil {
			return nil, err
		}
		h.Directories = append(h.Directories, dir)
		next = following
	}
	return h, nil
}

// readDirectory reads the IFD at off and returns it with the offset of the
// next IFD.
func readDirectory(r io.ReaderAt, off uint32) (Directory, uint32, error) {
	var n [2]byte
	if err := readFullAt(r, n[:], int64(off)); err != nil {
		return Directory{}, 0, err
	}
	numItems := uint64(binary.LittleEndian.Uint16(n[:]))

	// All entries and the trailing next offset are read in one chunk.
	p, err := readExact(r, ifdLen*numItems+4, int64(off)+2)
	if err != nil {
		return Directory{}, 0, err
	}

	dir := Directory{Offset: off, Entries: make([]Entry, numItems)}
	for i := range dir.Entries {
		if dir.Entries[i], err = DecodeEntry(p[i*ifdLen : (i+1)*ifdLen]); err != nil {
			return Directory{}, 0, err
		}
	}
	return dir, binary.LittleEndian.Uint32(p[len(p)-4:]), nil
}
