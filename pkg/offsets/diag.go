package offsets

import "github.com/trueshadow1995/DeadLock-Dumper/pkg/types"

// Sink observes per-signature scan outcomes. It is purely observational and
// must not influence the build; every attempted signature produces exactly
// one event.
type Sink interface {
	// Found reports a resolved offset. absolute is the RVA added to the
	// image's preferred base, for display only.
	Found(module, name string, rva types.Rva, absolute uint64)

	// Stale reports a signature that matched nothing in the current image.
	Stale(module, name string)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Found(module, name string, rva types.Rva, absolute uint64) {}
func (NopSink) Stale(module, name string)                                 {}
