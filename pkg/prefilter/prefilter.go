// Package prefilter cheaply rejects signatures that cannot match an image.
package prefilter

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// minAnchorLen is the shortest exact-byte run worth indexing. One-byte
// anchors occur in practically every image and filter nothing.
const minAnchorLen = 2

// Prefilter uses Aho-Corasick over each signature's longest run of exact
// bytes. One pass over the image tells which anchors occur at all; a
// signature whose anchor is absent can never match and is skipped without a
// window scan. Purely a throughput optimization: it never changes which
// signatures match.
type Prefilter struct {
	matcher   *ahocorasick.Matcher
	sigs      []*types.Signature
	sigAnchor []int // index into the anchor dictionary, -1 for none
}

// New builds a prefilter for sigs. Signature order is preserved by Filter.
func New(sigs []*types.Signature) *Prefilter {
	pf := &Prefilter{
		sigs:      sigs,
		sigAnchor: make([]int, len(sigs)),
	}

	var dict []string
	index := make(map[string]int)
	for i, sig := range sigs {
		anchor := anchorOf(sig.Compiled)
		if len(anchor) < minAnchorLen {
			pf.sigAnchor[i] = -1
			continue
		}
		key := string(anchor)
		idx, ok := index[key]
		if !ok {
			idx = len(dict)
			index[key] = idx
			dict = append(dict, key)
		}
		pf.sigAnchor[i] = idx
	}

	if len(dict) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(dict)
	}
	return pf
}

// Filter returns the signatures that might match image, in their original
// registration order. Signatures without a usable anchor are always kept.
func (pf *Prefilter) Filter(image []byte) []*types.Signature {
	if pf.matcher == nil {
		return pf.sigs
	}

	present := make(map[int]bool)
	for _, hit := range pf.matcher.Match(image) {
		present[hit] = true
	}

	out := make([]*types.Signature, 0, len(pf.sigs))
	for i, sig := range pf.sigs {
		if pf.sigAnchor[i] < 0 || present[pf.sigAnchor[i]] {
			out = append(out, sig)
		}
	}
	return out
}

// anchorOf returns the longest run of consecutive exact bytes in p.
func anchorOf(p *pattern.Pattern) []byte {
	if p == nil {
		return nil
	}
	var best, cur []byte
	for _, a := range p.Atoms {
		if a.Kind == pattern.KindExact {
			cur = append(cur, a.Value)
			continue
		}
		if len(cur) > len(best) {
			best = cur
		}
		cur = nil
	}
	if len(cur) > len(best) {
		best = cur
	}
	return best
}
