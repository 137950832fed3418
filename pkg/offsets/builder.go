// Package offsets turns signature matches into per-module offset tables.
package offsets

import (
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/prefilter"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/scanner"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/signature"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// Build runs every signature against one module image, in registration
// order, and returns the resolved offsets. A signature that matches nothing
// is reported stale and skipped; it never blocks the remaining entries.
// Derivation rules run after their signature's offset is inserted and may
// read every offset resolved earlier in the same pass.
func Build(sigs []*types.Signature, view *image.View, sink Sink) types.OffsetMap {
	if sink == nil {
		sink = NopSink{}
	}

	found := make(types.OffsetMap, len(sigs))
	if len(sigs) == 0 {
		return found
	}

	// One Aho-Corasick pass over the image rejects signatures whose anchor
	// bytes never occur; those are stale without a window scan.
	candidates := make(map[*types.Signature]bool, len(sigs))
	for _, sig := range prefilter.New(sigs).Filter(view.Bytes()) {
		candidates[sig] = true
	}

	for _, sig := range sigs {
		if !candidates[sig] {
			sink.Stale(sig.Module, sig.Name)
			continue
		}

		m, ok := scanner.Find(sig.Compiled, view.Bytes())
		if !ok {
			sink.Stale(sig.Module, sig.Name)
			continue
		}

		// The first capture is the entry's primary value; the loader
		// guarantees at least one.
		rva := m.Captures[0]
		found.Insert(sig.Name, rva)
		sink.Found(sig.Module, sig.Name, rva, view.Base()+uint64(rva))

		if sig.Derive != "" {
			if fn, ok := signature.Derivation(sig.Derive); ok {
				fn(view, found, rva)
			}
		}
	}
	return found
}
