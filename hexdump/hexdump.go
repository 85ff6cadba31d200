// Package hexdump renders byte buffers as colorized hex + ASCII
// lines for the command line tools.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"unicode"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options controls the dump layout and colors.
type Options struct {
	// BytesPerLine is the number of bytes rendered per output line.
	BytesPerLine int

	// Base is the address printed for the first byte; each line's
	// offset column counts up from it.
	Base uint64

	// ShowASCII appends the printable-character column.
	ShowASCII bool

	// Highlight marks a byte range [HighlightStart, HighlightEnd)
	// relative to the start of the data, e.g. a pattern match.
	HighlightStart, HighlightEnd int

	OffsetColor    coloransi.ColorCode
	HexColor       coloransi.ColorCode
	ZeroColor      coloransi.ColorCode
	HighlightColor coloransi.ColorCode
}

// DefaultOptions returns the layout the cmd tools use.
func DefaultOptions() Options {
	return Options{
		BytesPerLine:   16,
		ShowASCII:      true,
		OffsetColor:    coloransi.ColorTeal,
		HexColor:       coloransi.ColorLimeGreen,
		ZeroColor:      coloransi.BrightBlack,
		HighlightColor: coloransi.Yellow,
	}
}

// Dump renders data to a string.
func Dump(data []byte, options Options) string {
	var buf bytes.Buffer
	DumpToWriter(&buf, data, options)
	return buf.String()
}

// DumpToWriter renders data to the writer, one line per
// BytesPerLine bytes.
func DumpToWriter(w io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := offset + options.BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[offset:end]

		fmt.Fprint(w, coloransi.Foreground(options.OffsetColor,
			fmt.Sprintf("%012x", options.Base+uint64(offset))), "  ")

		for i := 0; i < options.BytesPerLine; i++ {
			if i >= len(line) {
				fmt.Fprint(w, "   ")
				continue
			}
			hexValue := fmt.Sprintf("%02x", line[i])
			switch {
			case offset+i >= options.HighlightStart && offset+i < options.HighlightEnd:
				fmt.Fprint(w, coloransi.Foreground(options.HighlightColor, hexValue))
			case line[i] == 0:
				fmt.Fprint(w, coloransi.Foreground(options.ZeroColor, hexValue))
			default:
				fmt.Fprint(w, coloransi.Foreground(options.HexColor, hexValue))
			}
			fmt.Fprint(w, " ")
		}

		if options.ShowASCII {
			fmt.Fprint(w, " |")
			for _, c := range line {
				if c < 128 && unicode.IsPrint(rune(c)) {
					fmt.Fprint(w, string(rune(c)))
				} else {
					fmt.Fprint(w, ".")
				}
			}
			fmt.Fprint(w, "|")
		}
		fmt.Fprintln(w)
	}
}
