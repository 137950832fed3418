package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports malformed signature text. Signatures are static data,
// so a SyntaxError is fatal for the whole registry build.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern %q: %s at position %d", e.Input, e.Msg, e.Pos)
}

// Compile parses signature text into an immutable Pattern. Compilation is
// pure: the same text always yields the same atom sequence.
func Compile(text string) (*Pattern, error) {
	p := &Pattern{Source: text}

	i, n := 0, len(text)
	for i < n {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '$':
			end, err := parseCaptureGroup(text, i)
			if err != nil {
				return nil, err
			}
			p.Atoms = append(p.Atoms, Atom{Kind: KindCaptureRip})
			p.Captures++
			i = end

		case c == 'u':
			if i+1 >= n || text[i+1] != '4' {
				return nil, &SyntaxError{text, i, "expected 'u4'"}
			}
			p.Atoms = append(p.Atoms, Atom{Kind: KindCaptureRaw})
			p.Captures++
			i += 2

		case c == '[':
			close := strings.IndexByte(text[i:], ']')
			if close < 0 {
				return nil, &SyntaxError{text, i, "unterminated skip group"}
			}
			count, err := strconv.Atoi(text[i+1 : i+close])
			if err != nil || count <= 0 {
				return nil, &SyntaxError{text, i, "malformed skip count"}
			}
			p.Atoms = append(p.Atoms, Atom{Kind: KindSkip, Skip: count})
			i += close + 1

		case c == '?':
			if i+1 < n && isHex(text[i+1]) {
				// low nibble fixed, high nibble wildcarded
				p.Atoms = append(p.Atoms, Atom{Kind: KindMasked, Value: hexVal(text[i+1]), Mask: 0x0F})
				i += 2
			} else {
				p.Atoms = append(p.Atoms, Atom{Kind: KindWildcard})
				i++
			}

		case isHex(c):
			switch {
			case i+1 < n && isHex(text[i+1]):
				p.Atoms = append(p.Atoms, Atom{Kind: KindExact, Value: hexVal(c)<<4 | hexVal(text[i+1])})
			case i+1 < n && text[i+1] == '?':
				// high nibble fixed, low nibble wildcarded
				p.Atoms = append(p.Atoms, Atom{Kind: KindMasked, Value: hexVal(c) << 4, Mask: 0xF0})
			default:
				return nil, &SyntaxError{text, i, "dangling hex digit"}
			}
			i += 2

		case c == '}' || c == ']':
			return nil, &SyntaxError{text, i, "unbalanced group delimiter"}

		default:
			return nil, &SyntaxError{text, i, fmt.Sprintf("unexpected character %q", c)}
		}
	}

	if len(p.Atoms) == 0 {
		return nil, &SyntaxError{text, 0, "empty pattern"}
	}
	for _, a := range p.Atoms {
		p.Length += a.Width()
	}
	return p, nil
}

// MustCompile is Compile for statically known signature text.
func MustCompile(text string) *Pattern {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}

// parseCaptureGroup consumes a "${...}" group starting at i and returns the
// index just past the closing brace. The braces may enclose an optional
// save marker ("'"); anything else is malformed.
func parseCaptureGroup(text string, i int) (int, error) {
	if i+1 >= len(text) || text[i+1] != '{' {
		return 0, &SyntaxError{text, i, "expected '{' after '$'"}
	}
	close := strings.IndexByte(text[i:], '}')
	if close < 0 {
		return 0, &SyntaxError{text, i, "unterminated capture group"}
	}
	for _, c := range text[i+2 : i+close] {
		if c != '\'' {
			return 0, &SyntaxError{text, i, "malformed capture group marker"}
		}
	}
	return i + close + 1, nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
