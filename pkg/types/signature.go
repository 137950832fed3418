package types

import "github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"

// Signature is one registry entry: a named byte pattern scoped to a module,
// with an optional derivation rule that computes further offsets from the
// match. Names are unique within a module.
type Signature struct {
	Module  string `json:"module"`           // image the pattern is scanned in, e.g. "client.dll"
	Name    string `json:"name"`             // offset name, e.g. "dwEntityList"
	Pattern string `json:"pattern"`          // signature source text
	Derive  string `json:"derive,omitempty"` // named derivation rule, empty for none

	Compiled *pattern.Pattern `json:"-"`
}
