package fatfuzz

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

type charmapConverter struct {
	cm *charmap.Charmap
}

// Cp437 converts using the original IBM PC code page, the default for FAT
// short names.
var Cp437 OemCpConverter = charmapConverter{cm: charmap.CodePage437}

// Cp850 converts using the western european DOS code page.
var Cp850 OemCpConverter = charmapConverter{cm: charmap.CodePage850}

func (c charmapConverter) Decode(b byte) rune {
	return c.cm.DecodeByte(b)
}

func (c charmapConverter) Encode(r rune) (byte, bool) {
	return c.cm.EncodeRune(r)
}

// DecodeOEM decodes raw OEM bytes, replacing nothing: every byte maps to
// exactly one rune.
func DecodeOEM(c OemCpConverter, raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, ch := range raw {
		b.WriteRune(c.Decode(ch))
	}
	return b.String()
}

// EncodeOEM encodes s, substituting '_' for runes the code page lacks.
func EncodeOEM(c OemCpConverter, s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		ch, ok := c.Encode(r)
		if !ok {
			ch = '_'
		}
		out = append(out, ch)
	}
	return out
}
