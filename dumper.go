// Package dumper locates hand-engineered byte signatures inside the loaded
// modules of the Deadlock client and resolves each to a named module-relative
// offset (RVA).
//
// # Basic Usage
//
// Create a dumper with the built-in signatures and run it against an image
// provider:
//
//	d, err := dumper.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider, err := winmem.Open("project8.exe")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	table, err := d.Dump(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("dwEntityList = %#x\n", table["client.dll"]["dwEntityList"])
//
// Signatures go stale as the game updates; a stale signature is reported
// through the diagnostics sink and skipped, never failing the dump. A module
// the provider cannot supply at all fails the whole run.
package dumper

import (
	"fmt"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/offsets"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/signature"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// Re-export the result types so most callers only import this package.
type (
	// Rva is a module-relative virtual address.
	Rva = types.Rva

	// OffsetMap maps offset names to RVAs for one module.
	OffsetMap = types.OffsetMap

	// Table is the aggregate result: module name to offset map.
	Table = types.Table

	// Signature is one named pattern scoped to a module.
	Signature = types.Signature
)

// DefaultProcess is the Deadlock client executable.
const DefaultProcess = "project8.exe"

// DefaultModules lists the images scanned by default, in processing order.
var DefaultModules = []string{"client.dll", "engine2.dll", "inputsystem.dll"}

// Dumper resolves a fixed signature registry against module images.
type Dumper struct {
	signatures []*types.Signature
	modules    []string
	sink       offsets.Sink
}

type config struct {
	signatures []*types.Signature
	modules    []string
	sink       offsets.Sink
}

// Option configures a Dumper.
type Option func(*config)

// WithSignatures replaces the built-in signature registry.
func WithSignatures(sigs []*Signature) Option {
	return func(c *config) {
		c.signatures = sigs
	}
}

// WithModules restricts the dump to the given modules, in order. The default
// is DefaultModules.
func WithModules(modules ...string) Option {
	return func(c *config) {
		c.modules = modules
	}
}

// WithSink registers a diagnostics sink observing every attempted signature.
func WithSink(sink offsets.Sink) Option {
	return func(c *config) {
		c.sink = sink
	}
}

// New creates a Dumper. Without options it carries the built-in registry and
// scans DefaultModules. Signature data is validated here, once: a malformed
// built-in or custom pattern fails construction.
func New(opts ...Option) (*Dumper, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	if c.signatures == nil {
		sigs, err := signature.NewLoader().LoadBuiltin()
		if err != nil {
			return nil, fmt.Errorf("loading builtin signatures: %w", err)
		}
		c.signatures = sigs
	}
	if c.modules == nil {
		c.modules = DefaultModules
	}
	if c.sink == nil {
		c.sink = offsets.NopSink{}
	}

	return &Dumper{
		signatures: c.signatures,
		modules:    c.modules,
		sink:       c.sink,
	}, nil
}

// Dump obtains every configured module's image from provider and resolves
// the registry against it. The returned table never misses a configured
// module; it may miss individual offsets whose signatures went stale.
func (d *Dumper) Dump(provider image.Provider) (Table, error) {
	return offsets.Aggregate(d.modules, provider, d.signatures, d.sink)
}

// Modules returns the modules the dumper is configured to scan.
func (d *Dumper) Modules() []string {
	out := make([]string, len(d.modules))
	copy(out, d.modules)
	return out
}

// Signatures returns a copy of the loaded registry.
func (d *Dumper) Signatures() []*Signature {
	out := make([]*Signature, len(d.signatures))
	copy(out, d.signatures)
	return out
}

// SignatureCount returns the number of registry entries loaded.
func (d *Dumper) SignatureCount() int {
	return len(d.signatures)
}

// LoadSignaturesFromFile loads a custom signature file for use with
// WithSignatures.
func LoadSignaturesFromFile(path string) ([]*Signature, error) {
	return signature.NewLoader().LoadFile(path)
}

// LoadBuiltinSignatures returns the built-in registry, e.g. to filter it
// before constructing a Dumper.
func LoadBuiltinSignatures() ([]*Signature, error) {
	return signature.NewLoader().LoadBuiltin()
}
