package fatfuzz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeOEM(t *testing.T) {
	require.Equal(t, "README  TXT", DecodeOEM(Cp437, []byte("README  TXT")))
	// 0x81 is u-umlaut in both pages, 0x9b differs
	require.Equal(t, "ü¢", DecodeOEM(Cp437, []byte{0x81, 0x9b}))
	require.Equal(t, "üø", DecodeOEM(Cp850, []byte{0x81, 0x9b}))
}

func TestEncodeOEM(t *testing.T) {
	require.Equal(t, []byte{'A', 0x81, 'B'}, EncodeOEM(Cp437, "AüB"))
	require.Equal(t, []byte("a_b"), EncodeOEM(Cp437, "a中b"))
}

func TestOEMRoundTrip(t *testing.T) {
	for b := 0x20; b < 0x100; b++ {
		r := Cp437.Decode(byte(b))
		got, ok := Cp437.Encode(r)
		require.True(t, ok, "byte %#x", b)
		require.Equal(t, byte(b), got)
	}
}

func TestMountOptionsDefaults(t *testing.T) {
	opts := MountOptions{}.WithDefaults()
	require.NotNil(t, opts.TimeProvider)
	require.NotNil(t, opts.Converter)
	require.Equal(t, byte(0x81), EncodeOEM(opts.Converter, "ü")[0])
}
