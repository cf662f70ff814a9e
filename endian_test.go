package svs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectEndianness(t *testing.T) {
	e, err := DetectEndianness([]byte("II"))
	require.NoError(t, err)
	require.Equal(t, LittleEndian, e)

	e, err = DetectEndianness([]byte("MM"))
	require.NoError(t, err)
	require.Equal(t, BigEndian, e)
	require.Equal(t, "big-endian", e.String())

	for _, b := range [][]byte{nil, []byte("I"), []byte("IM"), []byte("ii"), []byte("III"), {0, 0}} {
		_, err := DetectEndianness(b)
		var merr *EndianMarkerError
		require.ErrorAs(t, err, &merr, "%q", b)
		require.Equal(t, len(b), len(merr.Marker))
	}
}

func TestEndianMarkerErrorCopiesInput(t *testing.T) {
	b := []byte("XY")
	_, err := DetectEndianness(b)
	b[0] = 'I'
	var merr *EndianMarkerError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, []byte("XY"), merr.Marker)
}
