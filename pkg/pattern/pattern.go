// Package pattern implements the byte signature language used to locate
// instruction sequences inside a module image.
//
// A signature is written as a run of byte tokens. Whitespace is
// insignificant and only serves readability:
//
//	"488b35${'} 4c89b424???? 4c89bc24"
//
// Token forms:
//
//	48      exact byte
//	?       any byte (one byte per '?')
//	4? / ?8 masked byte; the '?' nibble is unconstrained
//	${'}    4-byte little-endian signed displacement, captured as the RVA
//	        immediately following the field plus the displacement
//	        (RIP-relative addressing; the marker inside the braces is
//	        optional and carries no meaning of its own)
//	u4      4-byte little-endian unsigned literal, captured raw with no
//	        positional adjustment (register-relative displacements)
//	[12]    skip 12 bytes without constraint
package pattern

import (
	"fmt"
	"strings"
)

// AtomKind discriminates the compiled match units.
type AtomKind uint8

const (
	KindExact AtomKind = iota
	KindWildcard
	KindMasked
	KindCaptureRip
	KindCaptureRaw
	KindSkip
)

// Atom is one compiled unit of a signature.
type Atom struct {
	Kind  AtomKind
	Value byte // KindExact, KindMasked
	Mask  byte // KindMasked
	Skip  int  // KindSkip
}

// Width returns the number of image bytes the atom consumes.
func (a Atom) Width() int {
	switch a.Kind {
	case KindCaptureRip, KindCaptureRaw:
		return 4
	case KindSkip:
		return a.Skip
	default:
		return 1
	}
}

// Pattern is an immutable compiled signature, reusable across scans.
type Pattern struct {
	Source   string
	Atoms    []Atom
	Length   int // bytes consumed by one match window
	Captures int // values produced on a successful match
}

// String renders the atoms back into canonical signature text. Compiling
// the result yields an equivalent atom sequence.
func (p *Pattern) String() string {
	var b strings.Builder
	for i, a := range p.Atoms {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch a.Kind {
		case KindExact:
			fmt.Fprintf(&b, "%02x", a.Value)
		case KindWildcard:
			b.WriteByte('?')
		case KindMasked:
			if a.Mask == 0xF0 {
				fmt.Fprintf(&b, "%x?", a.Value>>4)
			} else {
				fmt.Fprintf(&b, "?%x", a.Value&0x0F)
			}
		case KindCaptureRip:
			b.WriteString("${'}")
		case KindCaptureRaw:
			b.WriteString("u4")
		case KindSkip:
			fmt.Fprintf(&b, "[%d]", a.Skip)
		}
	}
	return b.String()
}
