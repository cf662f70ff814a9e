package svs

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Properties is the Aperio ImageDescription of the base layer:
//
//	Aperio Image Library v11.2.1\r\n46000x32914 [...] JPEG/RGB Q=30|AppMag = 20|MPP = 0.4990
//
// Header is the text before the first '|'; Values holds the
// "key = value" pairs after it.
type Properties struct {
	Header string
	Values map[string]string
}

// ParseProperties splits an ImageDescription into its header and
// key/value pairs. Segments without '=' are ignored.
func ParseProperties(desc string) *Properties {
	p := &Properties{Values: make(map[string]string)}
	parts := strings.Split(desc, "|")
	p.Header = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		p.Values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return p
}

// Float returns a numeric property.
func (p *Properties) Float(key string) (float64, bool) {
	v, ok := p.Values[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MPP is the base layer resolution in microns per pixel.
func (p *Properties) MPP() (float64, bool) { return p.Float("MPP") }

// AppMag is the apparent objective magnification.
func (p *Properties) AppMag() (float64, bool) { return p.Float("AppMag") }

// decodeText turns a TIFF ASCII value into a string. TIFF requires 7-bit
// ASCII but scanners write Latin-1, so anything that is not valid UTF-8 is
// decoded as ISO 8859-1.
func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	b, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// associatedName derives the name of a label or macro image from its
// description, whose second line starts with the image kind
// ("label 415x422").
func associatedName(desc string) string {
	lines := strings.FieldsFunc(desc, func(r rune) bool { return r == '\r' || r == '\n' })
	if len(lines) < 2 {
		return ""
	}
	fields := strings.Fields(lines[1])
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
