// Package image supplies module images to the scanner: a flat byte buffer in
// virtual layout (index == RVA) plus the little structured knowledge the
// dumper needs from the PE container (image base, section placement).
package image

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// View is one module's image laid out at its virtual addresses. Scanning a
// View's bytes yields RVAs directly.
type View struct {
	name string
	data []byte
	base uint64 // preferred load base from the optional header
}

// NewView wraps bytes that are already in virtual layout. Used by providers
// that read a mapped module out of a live process, and by tests.
func NewView(name string, data []byte, base uint64) *View {
	return &View{name: name, data: data, base: base}
}

// NewMemoryView parses the PE headers of an in-memory module dump. The bytes
// are already in virtual layout; only the image base is taken from the
// header.
func NewMemoryView(name string, data []byte) (*View, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s headers: %w", name, err)
	}
	defer f.Close()

	base, _, err := optionalHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &View{name: name, data: data, base: base}, nil
}

// NewFileView maps a PE file's raw layout into its virtual layout, so scan
// offsets line up with RVAs the same way they do for a live module.
func NewFileView(name string, raw []byte) (*View, error) {
	f, err := pe.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	defer f.Close()

	base, size, err := optionalHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if size == 0 || size > 1<<31 {
		return nil, fmt.Errorf("%s: implausible image size %#x", name, size)
	}

	data := make([]byte, size)
	copy(data, raw) // headers stay at RVA 0

	for _, s := range f.Sections {
		if s.Size == 0 {
			continue
		}
		start := int64(s.Offset)
		end := start + int64(s.Size)
		if start >= int64(len(raw)) {
			continue
		}
		if end > int64(len(raw)) {
			end = int64(len(raw))
		}
		va := int64(s.VirtualAddress)
		if va >= int64(len(data)) {
			continue
		}
		if va+(end-start) > int64(len(data)) {
			end = start + int64(len(data)) - va
		}
		copy(data[va:], raw[start:end])
	}
	return &View{name: name, data: data, base: base}, nil
}

// Name returns the module name the view was created for.
func (v *View) Name() string { return v.name }

// Bytes returns the virtual-layout image. Callers must not mutate it.
func (v *View) Bytes() []byte { return v.data }

// Base returns the module's preferred load base, used for display only.
func (v *View) Base() uint64 { return v.base }

// Size returns the virtual image size in bytes.
func (v *View) Size() int { return len(v.data) }

// ReadU32 reads a little-endian unsigned 32-bit value at rva.
func (v *View) ReadU32(rva types.Rva) (uint32, bool) {
	if int64(rva)+4 > int64(len(v.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(v.data[rva:]), true
}

// Slice returns n bytes of the image starting at rva.
func (v *View) Slice(rva types.Rva, n int) ([]byte, bool) {
	if n < 0 || int64(rva)+int64(n) > int64(len(v.data)) {
		return nil, false
	}
	return v.data[rva : int(rva)+n], true
}

// optionalHeader extracts image base and virtual size from either PE32+ or
// PE32 optional headers.
func optionalHeader(f *pe.File) (base uint64, size uint32, err error) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		return oh.ImageBase, oh.SizeOfImage, nil
	case *pe.OptionalHeader32:
		return uint64(oh.ImageBase), oh.SizeOfImage, nil
	default:
		return 0, 0, fmt.Errorf("missing optional header")
	}
}
