package signature

import (
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/scanner"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// DeriveFunc computes additional named offsets once its signature has
// matched. It runs with the full module image, the offsets resolved so far,
// and the signature's primary RVA. A rule must tolerate missing prerequisite
// entries: an absent input means skip, never fail. Inserted entries follow
// the same monotonic rule as primary offsets.
type DeriveFunc func(view *image.View, offsets types.OffsetMap, rva types.Rva)

// derivations is the closed set of rules a signature file may name.
var derivations = map[string]DeriveFunc{
	"client.local-player-pawn":    deriveLocalPlayerPawn,
	"client.highest-entity-index": deriveHighestEntityIndex,
}

// Derivation resolves a rule name from signature data.
func Derivation(name string) (DeriveFunc, bool) {
	fn, ok := derivations[name]
	return fn, ok
}

// localPawnSlotGap is the distance from the local controller slot to the
// pawn slot in the entity system's per-player block.
const localPawnSlotGap = 0x10

// deriveLocalPlayerPawn resolves dwLocalPlayerPawn from the matched
// controller slot. The pawn handle sits one slot past the controller; the
// layout is only trusted when the entity list resolved earlier in the same
// pass.
func deriveLocalPlayerPawn(view *image.View, offsets types.OffsetMap, rva types.Rva) {
	if _, ok := offsets["dwEntityList"]; !ok {
		return
	}
	pawn := rva + localPawnSlotGap
	if _, ok := view.ReadU32(pawn); !ok {
		return
	}
	offsets.Insert("dwLocalPlayerPawn", pawn)
}

// mov eax, [rcx+disp32]; ret — the CGameEntitySystem accessor that loads the
// highest entity index. The second copy of the load distinguishes it from
// the other thunk-style field getters.
var highestEntityIndexPattern = pattern.MustCompile("8b81u4 c3 cccccccccccccccc 8b81")

// deriveHighestEntityIndex records the field displacement read by the
// highest-entity-index accessor.
func deriveHighestEntityIndex(view *image.View, offsets types.OffsetMap, _ types.Rva) {
	m, ok := scanner.Find(highestEntityIndexPattern, view.Bytes())
	if !ok {
		return
	}
	offsets.Insert("dwGameEntitySystem_highestEntityIndex", m.Captures[0])
}
