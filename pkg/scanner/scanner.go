// Package scanner finds compiled signatures inside a module image.
package scanner

import (
	"bytes"
	"encoding/binary"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// Match is one successful scan result: the byte offset where the pattern
// began matching and every captured value as a module-relative address. The
// image buffer is laid out at its virtual addresses, so offsets are RVAs.
type Match struct {
	Offset   int
	Captures []types.Rva
}

// Find returns the first window of image that matches p. The scan is
// deterministic: the same image and pattern always yield the same match.
// A pattern that matches nothing returns (nil, false); that is an expected
// outcome, not an error.
func Find(p *pattern.Pattern, image []byte) (*Match, bool) {
	if p == nil || len(p.Atoms) == 0 || len(image) < p.Length {
		return nil, false
	}
	limit := len(image) - p.Length

	// When the pattern opens with an exact byte, let IndexByte skip ahead
	// instead of testing every window.
	first := p.Atoms[0]
	anchored := first.Kind == pattern.KindExact

	off := 0
	for off <= limit {
		if anchored {
			rel := bytes.IndexByte(image[off:limit+1], first.Value)
			if rel < 0 {
				return nil, false
			}
			off += rel
		}
		if caps, ok := matchAt(p, image, off); ok {
			return &Match{Offset: off, Captures: caps}, true
		}
		off++
	}
	return nil, false
}

// matchAt tests every atom of p against image starting at start. The caller
// guarantees start+p.Length <= len(image).
func matchAt(p *pattern.Pattern, image []byte, start int) ([]types.Rva, bool) {
	var caps []types.Rva
	if p.Captures > 0 {
		caps = make([]types.Rva, 0, p.Captures)
	}

	pos := start
	for _, a := range p.Atoms {
		switch a.Kind {
		case pattern.KindExact:
			if image[pos] != a.Value {
				return nil, false
			}
			pos++
		case pattern.KindWildcard:
			pos++
		case pattern.KindMasked:
			if image[pos]&a.Mask != a.Value&a.Mask {
				return nil, false
			}
			pos++
		case pattern.KindSkip:
			pos += a.Skip
		case pattern.KindCaptureRaw:
			caps = append(caps, types.Rva(binary.LittleEndian.Uint32(image[pos:])))
			pos += 4
		case pattern.KindCaptureRip:
			disp := int32(binary.LittleEndian.Uint32(image[pos:]))
			pos += 4
			// Displacement is relative to the address immediately after
			// the 4-byte field.
			caps = append(caps, types.Rva(uint32(int64(pos)+int64(disp))))
		}
	}
	return caps, true
}
