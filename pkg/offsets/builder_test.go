package offsets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// recordingSink captures sink events for assertions.
type recordingSink struct {
	found []string
	stale []string
	abs   map[string]uint64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{abs: make(map[string]uint64)}
}

func (s *recordingSink) Found(module, name string, rva types.Rva, absolute uint64) {
	s.found = append(s.found, name)
	s.abs[name] = absolute
}

func (s *recordingSink) Stale(module, name string) {
	s.stale = append(s.stale, name)
}

func mkSig(name, text string) *types.Signature {
	return &types.Signature{
		Module:   "client.dll",
		Name:     name,
		Pattern:  text,
		Compiled: pattern.MustCompile(text),
	}
}

// testImage lays out one RIP-relative site at RVA 0x40: the displacement
// field holds 0x100, so the captured RVA is 0x47+0x100 = 0x147.
func testImage() []byte {
	data := make([]byte, 0x400)
	copy(data[0x40:], []byte{0x48, 0x89, 0x35, 0x00, 0x01, 0x00, 0x00})
	return data
}

func TestBuild_ResolvesOffsets(t *testing.T) {
	view := image.NewView("client.dll", testImage(), 0x180000000)
	sigs := []*types.Signature{mkSig("dwEntityList", "488935${'}")}
	sink := newRecordingSink()

	found := Build(sigs, view, sink)

	require.Len(t, found, 1)
	assert.Equal(t, types.Rva(0x147), found["dwEntityList"])
	assert.Equal(t, []string{"dwEntityList"}, sink.found)
	assert.Empty(t, sink.stale)
	assert.Equal(t, uint64(0x180000147), sink.abs["dwEntityList"])
}

func TestBuild_StaleSignatureIsIsolated(t *testing.T) {
	// A signature that matches nothing must not block later entries.
	view := image.NewView("client.dll", testImage(), 0)
	sigs := []*types.Signature{
		mkSig("gone", "feedface${'}"),
		mkSig("dwEntityList", "488935${'}"),
	}
	sink := newRecordingSink()

	found := Build(sigs, view, sink)

	require.Len(t, found, 1)
	assert.Contains(t, found, "dwEntityList")
	assert.Equal(t, []string{"gone"}, sink.stale)
	assert.Equal(t, []string{"dwEntityList"}, sink.found)
}

func TestBuild_EveryAttemptProducesOneEvent(t *testing.T) {
	view := image.NewView("client.dll", testImage(), 0)
	sigs := []*types.Signature{
		mkSig("a", "488935${'}"),
		mkSig("b", "deadbeef${'}"),
		mkSig("c", "cafebabe${'}"),
	}
	sink := newRecordingSink()

	Build(sigs, view, sink)

	assert.Equal(t, len(sigs), len(sink.found)+len(sink.stale))
}

func TestBuild_MonotonicInsert(t *testing.T) {
	// Two entries would resolve to the same name; the first insertion wins.
	view := image.NewView("client.dll", testImage(), 0)
	first := mkSig("dup", "488935${'}")
	second := &types.Signature{
		Module:   "client.dll",
		Name:     "dup",
		Pattern:  "4889${'}",
		Compiled: pattern.MustCompile("4889${'}"),
	}
	sink := newRecordingSink()

	found := Build([]*types.Signature{first, second}, view, sink)

	require.Len(t, found, 1)
	assert.Equal(t, types.Rva(0x147), found["dup"])
}

func TestBuild_DerivationReadsEarlierOffsets(t *testing.T) {
	// dwEntityList resolves first; the controller signature then derives
	// dwLocalPlayerPawn one slot past its own capture.
	data := testImage()
	// controller site at 0xa0, displacement 0x20 -> capture 0xa7+0x20 = 0xc7
	copy(data[0xa0:], []byte{0x48, 0x3b, 0x35, 0x20, 0x00, 0x00, 0x00})
	view := image.NewView("client.dll", data, 0)

	sigs := []*types.Signature{
		mkSig("dwEntityList", "488935${'}"),
		func() *types.Signature {
			s := mkSig("dwLocalPlayerController", "483b35${'}")
			s.Derive = "client.local-player-pawn"
			return s
		}(),
	}

	found := Build(sigs, view, NopSink{})

	require.Contains(t, found, "dwLocalPlayerController")
	assert.Equal(t, types.Rva(0xc7), found["dwLocalPlayerController"])
	require.Contains(t, found, "dwLocalPlayerPawn")
	assert.Equal(t, types.Rva(0xd7), found["dwLocalPlayerPawn"])
}

func TestBuild_DerivationSkipsWithoutPrerequisite(t *testing.T) {
	// Without dwEntityList the pawn derivation must silently skip.
	data := make([]byte, 0x400)
	copy(data[0xa0:], []byte{0x48, 0x3b, 0x35, 0x20, 0x00, 0x00, 0x00})
	view := image.NewView("client.dll", data, 0)

	sig := mkSig("dwLocalPlayerController", "483b35${'}")
	sig.Derive = "client.local-player-pawn"

	found := Build([]*types.Signature{sig}, view, NopSink{})

	assert.Contains(t, found, "dwLocalPlayerController")
	assert.NotContains(t, found, "dwLocalPlayerPawn")
}

func TestBuild_NilSinkTolerated(t *testing.T) {
	view := image.NewView("client.dll", testImage(), 0)
	found := Build([]*types.Signature{mkSig("dwEntityList", "488935${'}")}, view, nil)
	assert.Len(t, found, 1)
}

func TestBuild_NoSignatures(t *testing.T) {
	view := image.NewView("client.dll", testImage(), 0)
	found := Build(nil, view, NopSink{})
	assert.Empty(t, found)
}
