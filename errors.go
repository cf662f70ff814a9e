// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

import (
	"errors"
	"fmt"
)

// A FormatError reports that the input is not a valid SVS/TIFF file.
type FormatError string

func (e FormatError) Error() string { return "svs: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unimplemented
// feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "svs: unsupported feature: " + string(e) }

var (
	ErrNotTIFF                = FormatError("not a TIFF file")
	ErrNoDirectories          = FormatError("no image file directories")
	ErrDirectoryLoop          = FormatError("image file directory loop")
	ErrTooManyDirectories     = FormatError("too many image file directories")
	ErrBigEndian              = UnsupportedError("big-endian TIFF")
	ErrUnsupportedCompression = UnsupportedError("compression")

	ErrInvalidLayer   = errors.New("svs: invalid layer")
	ErrInvalidTileID  = errors.New("svs: invalid tile id")
	ErrBufferTooSmall = errors.New("svs: buffer too small")
	ErrNotFound       = errors.New("svs: not found")
)

// EndianMarkerError is returned for a byte-order marker that is neither
// "II" nor "MM".
type EndianMarkerError struct {
	Marker []byte
}

func (e *EndianMarkerError) Error() string {
	return fmt.Sprintf("svs: unrecognized endian marker %v", e.Marker)
}

// UnknownFieldTypeError is the type code of an entry outside the twelve
// TIFF 6.0 field types.
type UnknownFieldTypeError uint16

func (e UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("svs: unknown field type %d", uint16(e))
}

// TagNotFoundError reports a required tag missing from a directory.
type TagNotFoundError struct {
	Tag       Tag
	Directory int
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("svs: tag %d (%s) not found in directory %d", uint16(e.Tag), e.Tag, e.Directory)
}

// TileError carries the indices of an out-of-range tile access. It unwraps
// to ErrInvalidLayer or ErrInvalidTileID.
type TileError struct {
	Layer int
	Tile  int
	Err   error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("%v: layer %d, tile %d", e.Err, e.Layer, e.Tile)
}

func (e *TileError) Unwrap() error { return e.Err }

// StorageError wraps a failed read of the underlying storage.
type StorageError struct {
	Offset int64
	Length uint64
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("svs: read %d bytes at offset %d: %v", e.Length, e.Offset, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CodecError wraps a failure of the pixel codec for a compression scheme.
type CodecError struct {
	Compression uint16
	Err         error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("svs: decode compression %d: %v", e.Compression, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }
