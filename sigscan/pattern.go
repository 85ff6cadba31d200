// Package sigscan locates wildcard byte signatures inside a target
// module and turns matches into usable addresses, including the
// rel32 displacement resolution x86 code references need.
package sigscan

import (
	"fmt"
	"strconv"
	"strings"

	"memprobe/target"
)

// Pattern is a parsed byte signature: concrete bytes plus a mask
// where 0xFF means the byte must match exactly and 0x00 means any
// byte matches.
type Pattern struct {
	bytes []byte
	mask  []byte
}

// Parse builds a Pattern from signature text: whitespace-separated
// tokens, each either a two-hex-digit byte ("48") or a wildcard ("?"
// or "??"). An empty or malformed signature fails with
// target.ErrBadPattern before any memory is touched.
func Parse(text string) (Pattern, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Pattern{}, fmt.Errorf("empty signature: %w", target.ErrBadPattern)
	}

	p := Pattern{
		bytes: make([]byte, len(tokens)),
		mask:  make([]byte, len(tokens)),
	}
	for i, tok := range tokens {
		if tok == "?" || tok == "??" {
			continue
		}
		if len(tok) != 2 {
			return Pattern{}, fmt.Errorf("token %q at position %d: %w", tok, i, target.ErrBadPattern)
		}
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return Pattern{}, fmt.Errorf("token %q at position %d: %w", tok, i, target.ErrBadPattern)
		}
		p.bytes[i] = byte(b)
		p.mask[i] = 0xFF
	}
	return p, nil
}

// Len returns the signature length in bytes.
func (p Pattern) Len() int {
	return len(p.bytes)
}

func (p Pattern) String() string {
	var sb strings.Builder
	for i, b := range p.bytes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if p.mask[i] == 0 {
			sb.WriteByte('?')
		} else {
			fmt.Fprintf(&sb, "%02X", b)
		}
	}
	return sb.String()
}

// matchOffsets returns every offset in data where the pattern fully
// matches, in ascending order. Naive comparison; module images are
// small enough that this stays tractable, and ascending order is what
// gives first-match-wins its lowest-address tie-break.
func matchOffsets(data []byte, p Pattern, firstOnly bool) []uint64 {
	if len(p.bytes) == 0 || len(data) < len(p.bytes) {
		return nil
	}
	var out []uint64
	limit := len(data) - len(p.bytes)
	for i := 0; i <= limit; i++ {
		matched := true
		for j := range p.bytes {
			if p.mask[j] == 0 {
				continue
			}
			if data[i+j] != p.bytes[j] {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, uint64(i))
			if firstOnly {
				return out
			}
		}
	}
	return out
}
