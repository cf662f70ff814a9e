// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

// Endianness is the byte order declared by a TIFF header.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// DetectEndianness classifies a 2-byte marker. Any input that is not exactly
// "II" or "MM" is rejected, including longer slices.
func DetectEndianness(b []byte) (Endianness, error) {
	if len(b) == 2 {
		switch string(b) {
		case leMarker:
			return LittleEndian, nil
		case beMarker:
			return BigEndian, nil
		}
	}
	return 0, &EndianMarkerError{Marker: append([]byte(nil), b...)}
}
