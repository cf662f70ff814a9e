// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

// FieldType is one of the TIFF 6.0 field data types.
type FieldType uint16

// TIFF data types (TIFF 6.0, p. 14-16).
const (
	Byte      FieldType = 1
	ASCII     FieldType = 2
	Short     FieldType = 3
	Long      FieldType = 4
	Rational  FieldType = 5
	SByte     FieldType = 6
	Undefined FieldType = 7
	SShort    FieldType = 8
	SLong     FieldType = 9
	SRational FieldType = 10
	Float     FieldType = 11
	Double    FieldType = 12
)

// The length of one instance of each data type in bytes.
var widths = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

var fieldTypeNames = [...]string{
	"", "Byte", "ASCII", "Short", "Long", "Rational", "SByte",
	"Undefined", "SShort", "SLong", "SRational", "Float", "Double",
}

// ParseFieldType maps a 16-bit type code to its FieldType.
func ParseFieldType(code uint16) (FieldType, error) {
	if code == 0 || int(code) >= len(widths) {
		return 0, UnknownFieldTypeError(code)
	}
	return FieldType(code), nil
}

// Width is the size in bytes of a single value of the type.
func (t FieldType) Width() uint32 {
	if int(t) >= len(widths) {
		return 0
	}
	return widths[t]
}

// IsIntegral reports whether t is one of the TIFF unsigned or signed
// integer types.
func (t FieldType) IsIntegral() bool {
	switch t {
	case Byte, Short, Long, SByte, SShort, SLong:
		return true
	}
	return false
}

func (t FieldType) String() string {
	if t == 0 || int(t) >= len(fieldTypeNames) {
		return "Unknown"
	}
	return fieldTypeNames[t]
}
