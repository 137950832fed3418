// Package types holds the data model shared across the dumper: RVAs, offset
// maps, result tables, and signatures.
package types

// Rva is an address expressed as a byte offset relative to a module's load
// base, independent of where the module is actually mapped.
type Rva uint32

// OffsetMap maps offset names to RVAs for one module. It is built
// incrementally during one pass over the signature registry and is never
// mutated afterwards.
type OffsetMap map[string]Rva

// Insert adds a named offset. Entries are monotonic: an existing name is
// never overwritten, and Insert reports whether the entry was added.
func (m OffsetMap) Insert(name string, rva Rva) bool {
	if _, ok := m[name]; ok {
		return false
	}
	m[name] = rva
	return true
}

// Table is the aggregate result: module name to offset map.
type Table map[string]OffsetMap
