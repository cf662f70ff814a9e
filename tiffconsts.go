// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

import "strconv"

// An SVS file is a little-endian TIFF. The metadata of each image is
// contained in an Image File Directory (IFD), which contains entries of
// 12 bytes each. An IFD entry consists of
//
//  - a tag, which describes the signification of the entry,
//  - the data type and length of the entry,
//  - the data itself or a pointer to it if it is more than 4 bytes.
//
// The presence of a length means that each IFD is effectively an array.

const (
	leMarker = "II"
	beMarker = "MM"

	tiffMagic = 42

	headerLen = 8  // Marker, magic and offset of the first IFD.
	ifdLen    = 12 // Length of an IFD entry in bytes.
)

// Tag is a TIFF tag id.
type Tag uint16

// Tags that may appear in SVS directories (TIFF 6.0, p. 28-41). Only a
// subset is consumed when deriving the pyramid.
const (
	TagNewSubfileType            Tag = 254
	TagImageWidth                Tag = 256
	TagImageLength               Tag = 257
	TagBitsPerSample             Tag = 258
	TagCompression               Tag = 259
	TagPhotometricInterpretation Tag = 262
	TagImageDescription          Tag = 270
	TagStripOffsets              Tag = 273
	TagSamplesPerPixel           Tag = 277
	TagRowsPerStrip              Tag = 278
	TagStripByteCounts           Tag = 279
	TagPlanarConfiguration       Tag = 284
	TagTileWidth                 Tag = 322
	TagTileLength                Tag = 323
	TagTileOffsets               Tag = 324
	TagTileByteCounts            Tag = 325
	TagJPEGTables                Tag = 347
	TagImageDepth                Tag = 32997
	TagICCProfile                Tag = 34675
)

var tagNames = map[Tag]string{
	TagNewSubfileType:            "NewSubfileType",
	TagImageWidth:                "ImageWidth",
	TagImageLength:               "ImageLength",
	TagBitsPerSample:             "BitsPerSample",
	TagCompression:               "Compression",
	TagPhotometricInterpretation: "PhotometricInterpretation",
	TagImageDescription:          "ImageDescription",
	TagStripOffsets:              "StripOffsets",
	TagSamplesPerPixel:           "SamplesPerPixel",
	TagRowsPerStrip:              "RowsPerStrip",
	TagStripByteCounts:           "StripByteCounts",
	TagPlanarConfiguration:       "PlanarConfiguration",
	TagTileWidth:                 "TileWidth",
	TagTileLength:                "TileLength",
	TagTileOffsets:               "TileOffsets",
	TagTileByteCounts:            "TileByteCounts",
	TagJPEGTables:                "JPEGTables",
	TagImageDepth:                "ImageDepth",
	TagICCProfile:                "ICCProfile",
}

// String returns the tag's TIFF name, or its number if it is not catalogued.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// Compression schemes (tag 259).
const (
	CompressionNone        uint16 = 1
	CompressionLZW         uint16 = 5
	CompressionJPEG        uint16 = 7
	CompressionDeflate     uint16 = 8
	CompressionJPEG2000YCC uint16 = 33003 // Aperio
	CompressionJPEG2000RGB uint16 = 33005 // Aperio
	CompressionDeflateOld  uint16 = 32946
	CompressionZSTD        uint16 = 50000
)
