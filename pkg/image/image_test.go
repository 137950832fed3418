package image

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// buildPE assembles a minimal PE32+ file with a single .text section mapped
// at RVA 0x1000, enough for debug/pe to parse.
func buildPE(text []byte, imageBase uint64, sizeOfImage uint32) []byte {
	const (
		peOffset  = 0x80
		optOffset = peOffset + 4 + 20
		secOffset = optOffset + 240
		rawOffset = 0x200
	)
	file := make([]byte, rawOffset+len(text))
	copy(file, "MZ")
	binary.LittleEndian.PutUint32(file[0x3c:], peOffset)
	copy(file[peOffset:], "PE\x00\x00")

	coff := file[peOffset+4:]
	binary.LittleEndian.PutUint16(coff[0:], 0x8664) // AMD64
	binary.LittleEndian.PutUint16(coff[2:], 1)      // one section
	binary.LittleEndian.PutUint16(coff[16:], 240)   // optional header size
	binary.LittleEndian.PutUint16(coff[18:], 0x2022)

	opt := file[optOffset:]
	binary.LittleEndian.PutUint16(opt[0:], 0x20b) // PE32+
	binary.LittleEndian.PutUint64(opt[24:], imageBase)
	binary.LittleEndian.PutUint32(opt[32:], 0x1000) // section alignment
	binary.LittleEndian.PutUint32(opt[36:], 0x200)  // file alignment
	binary.LittleEndian.PutUint32(opt[56:], sizeOfImage)
	binary.LittleEndian.PutUint32(opt[60:], rawOffset) // size of headers
	binary.LittleEndian.PutUint32(opt[108:], 16)       // data directory count

	sec := file[secOffset:]
	copy(sec, ".text")
	binary.LittleEndian.PutUint32(sec[8:], uint32(len(text)))  // virtual size
	binary.LittleEndian.PutUint32(sec[12:], 0x1000)            // virtual address
	binary.LittleEndian.PutUint32(sec[16:], uint32(len(text))) // raw size
	binary.LittleEndian.PutUint32(sec[20:], rawOffset)         // raw pointer
	binary.LittleEndian.PutUint32(sec[36:], 0x60000020)        // code | exec | read

	copy(file[rawOffset:], text)
	return file
}

func TestNewFileView_RemapsSections(t *testing.T) {
	text := []byte{0x48, 0x89, 0x35, 0xde, 0xad, 0xbe, 0xef}
	raw := buildPE(text, 0x180000000, 0x2000)

	v, err := NewFileView("client.dll", raw)
	if err != nil {
		t.Fatalf("NewFileView failed: %v", err)
	}

	if v.Name() != "client.dll" {
		t.Errorf("expected name client.dll, got %s", v.Name())
	}
	if v.Size() != 0x2000 {
		t.Errorf("expected virtual size 0x2000, got %#x", v.Size())
	}
	if v.Base() != 0x180000000 {
		t.Errorf("expected base 0x180000000, got %#x", v.Base())
	}

	// Headers stay at RVA 0; the section lands at its virtual address.
	data := v.Bytes()
	if data[0] != 'M' || data[1] != 'Z' {
		t.Error("expected DOS header at RVA 0")
	}
	for i, b := range text {
		if data[0x1000+i] != b {
			t.Fatalf("expected section byte %#x at RVA %#x, got %#x", b, 0x1000+i, data[0x1000+i])
		}
	}
}

func TestNewFileView_TruncatedSectionData(t *testing.T) {
	text := []byte{0x11, 0x22, 0x33, 0x44}
	raw := buildPE(text, 0x180000000, 0x2000)

	// Cut the file short so the section's raw range runs past the end.
	v, err := NewFileView("client.dll", raw[:len(raw)-2])
	if err != nil {
		t.Fatalf("NewFileView failed: %v", err)
	}
	data := v.Bytes()
	if data[0x1000] != 0x11 || data[0x1001] != 0x22 {
		t.Error("expected available section bytes to be copied")
	}
	if data[0x1003] != 0 {
		t.Error("expected missing tail to stay zeroed")
	}
}

func TestNewFileView_ImplausibleSize(t *testing.T) {
	raw := buildPE([]byte{0x90}, 0x180000000, 0)
	if _, err := NewFileView("client.dll", raw); err == nil {
		t.Error("expected error for zero image size")
	}
}

func TestNewFileView_NotPE(t *testing.T) {
	if _, err := NewFileView("client.dll", []byte("definitely not a PE file")); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewMemoryView(t *testing.T) {
	raw := buildPE([]byte{0x90}, 0x7ff600000000, 0x2000)

	// A module dump keeps headers at offset 0, which is all the parser
	// needs; the buffer is taken as already laid out.
	v, err := NewMemoryView("engine2.dll", raw)
	if err != nil {
		t.Fatalf("NewMemoryView failed: %v", err)
	}
	if v.Base() != 0x7ff600000000 {
		t.Errorf("expected base from optional header, got %#x", v.Base())
	}
	if v.Size() != len(raw) {
		t.Errorf("expected size %d, got %d", len(raw), v.Size())
	}
}

func TestView_ReadU32(t *testing.T) {
	v := NewView("client.dll", []byte{0x44, 0x33, 0x22, 0x11, 0x00}, 0)

	got, ok := v.ReadU32(0)
	if !ok || got != 0x11223344 {
		t.Errorf("expected 0x11223344, got %#x (ok=%v)", got, ok)
	}
	if _, ok := v.ReadU32(1); !ok {
		t.Error("expected in-bounds read to succeed")
	}
	if _, ok := v.ReadU32(types.Rva(2)); ok {
		t.Error("expected out-of-bounds read to fail")
	}
}

func TestView_Slice(t *testing.T) {
	v := NewView("client.dll", []byte{1, 2, 3, 4}, 0)

	s, ok := v.Slice(1, 2)
	if !ok || len(s) != 2 || s[0] != 2 {
		t.Errorf("expected slice [2 3], got %v (ok=%v)", s, ok)
	}
	if _, ok := v.Slice(3, 2); ok {
		t.Error("expected out-of-bounds slice to fail")
	}
	if _, ok := v.Slice(0, -1); ok {
		t.Error("expected negative length to fail")
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	raw := buildPE([]byte{0x90, 0x90}, 0x180000000, 0x2000)
	if err := os.WriteFile(filepath.Join(dir, "client.dll"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(dir)

	v, err := p.GetImage("client.dll")
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if v.Name() != "client.dll" {
		t.Errorf("expected name client.dll, got %s", v.Name())
	}

	_, err = p.GetImage("missing.dll")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("expected ErrModuleNotFound, got %v", err)
	}
}
