package mem

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"memprobe/target"
)

// Encoding names a text encoding ReadString can decode.
type Encoding string

const (
	// UTF8 decodes bytes as UTF-8, terminator 0x00.
	UTF8 Encoding = "utf-8"

	// UTF16 decodes bytes as UTF-16 little-endian, terminator a zero
	// code unit (two bytes).
	UTF16 Encoding = "utf-16le"
)

// ReadString reads up to maxLen bytes at addr and decodes them with
// the given encoding, truncating at the first terminator if one
// occurs earlier. Invalid sequences are replaced with U+FFFD, never
// surfaced as an error; the only failure modes are the underlying
// read and an unknown encoding name.
func (a *Accessor) ReadString(addr target.Address, maxLen target.Size, enc Encoding) (string, error) {
	switch enc {
	case UTF8, UTF16:
	default:
		return "", fmt.Errorf("read string at %s: %q: %w", addr, string(enc), target.ErrUnknownEncoding)
	}

	if maxLen == 0 {
		return "", nil
	}
	data, err := a.h.ReadRaw(addr, maxLen)
	if err != nil {
		return "", err
	}

	if enc == UTF8 {
		for i, b := range data {
			if b == 0 {
				data = data[:i]
				break
			}
		}
		return strings.ToValidUTF8(string(data), "�"), nil
	}

	// UTF-16LE: pair bytes into code units, stop at the first zero
	// unit. A dangling odd byte is dropped.
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}
