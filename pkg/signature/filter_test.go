package signature

import (
	"testing"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

func testSigs() []*types.Signature {
	mk := func(module, name string) *types.Signature {
		return &types.Signature{
			Module:   module,
			Name:     name,
			Pattern:  "48${'}",
			Compiled: pattern.MustCompile("48${'}"),
		}
	}
	return []*types.Signature{
		mk("client.dll", "dwEntityList"),
		mk("client.dll", "dwViewMatrix"),
		mk("engine2.dll", "dwBuildNumber"),
	}
}

func TestParsePatterns(t *testing.T) {
	got := ParsePatterns("dwEntity, dwView ,,")
	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(got))
	}
	if got[0] != "dwEntity" || got[1] != "dwView" {
		t.Errorf("expected trimmed patterns, got %v", got)
	}
	if len(ParsePatterns("")) != 0 {
		t.Error("expected no patterns for empty input")
	}
}

func TestFilter_Include(t *testing.T) {
	sigs, err := Filter(testSigs(), FilterConfig{Include: []string{"^client"}})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}
	if sigs[0].Name != "dwEntityList" || sigs[1].Name != "dwViewMatrix" {
		t.Error("expected registration order preserved after include")
	}
}

func TestFilter_Exclude(t *testing.T) {
	sigs, err := Filter(testSigs(), FilterConfig{Exclude: []string{"dwViewMatrix"}})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}
	for _, sig := range sigs {
		if sig.Name == "dwViewMatrix" {
			t.Error("expected dwViewMatrix to be excluded")
		}
	}
}

func TestFilter_IncludeThenExclude(t *testing.T) {
	sigs, err := Filter(testSigs(), FilterConfig{
		Include: []string{"^client"},
		Exclude: []string{"dwViewMatrix"},
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(sigs) != 1 || sigs[0].Name != "dwEntityList" {
		t.Errorf("expected only dwEntityList, got %d signatures", len(sigs))
	}
}

func TestFilter_EmptyConfigKeepsAll(t *testing.T) {
	sigs, err := Filter(testSigs(), FilterConfig{})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(sigs) != 3 {
		t.Errorf("expected all 3 signatures, got %d", len(sigs))
	}
}

func TestFilter_InvalidRegex(t *testing.T) {
	_, err := Filter(testSigs(), FilterConfig{Include: []string{"[invalid"}})
	if err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestFilter_QualifiedNames(t *testing.T) {
	// Patterns match the "module/name" form, so a module prefix can pin a
	// name to one image.
	sigs, err := Filter(testSigs(), FilterConfig{Include: []string{"^engine2\\.dll/"}})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(sigs) != 1 || sigs[0].Name != "dwBuildNumber" {
		t.Errorf("expected only dwBuildNumber, got %d signatures", len(sigs))
	}
}
