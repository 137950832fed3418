//go:build windows

// Package winmem reads module images out of a running game process.
package winmem

import (
	"fmt"
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
)

type moduleInfo struct {
	base uintptr
	size uint32
	name string
}

// ProcessProvider implements image.Provider for a live process. Each module
// image is read straight out of the process, so the bytes are already in
// virtual layout.
type ProcessProvider struct {
	handle  windows.Handle
	pid     uint32
	modules map[string]moduleInfo // keyed by lowercase module name
}

// Open attaches to the first process whose executable name equals
// processName (case-insensitive) and snapshots its loaded modules.
func Open(processName string) (*ProcessProvider, error) {
	pid, err := findProcess(processName)
	if err != nil {
		return nil, err
	}

	handle, err := windows.OpenProcess(
		windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, pid)
	if err != nil {
		return nil, fmt.Errorf("opening process %d: %w", pid, err)
	}

	modules, err := listModules(handle, pid)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, err
	}

	return &ProcessProvider{handle: handle, pid: pid, modules: modules}, nil
}

// Pid returns the attached process id.
func (p *ProcessProvider) Pid() uint32 { return p.pid }

// GetImage reads the named module's full image out of the process.
func (p *ProcessProvider) GetImage(module string) (*image.View, error) {
	mi, ok := p.modules[strings.ToLower(module)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", module, image.ErrModuleNotFound)
	}

	data := make([]byte, mi.size)
	if err := p.read(mi.base, data); err != nil {
		return nil, fmt.Errorf("reading %s: %w", module, err)
	}
	return image.NewMemoryView(module, data)
}

// Close releases the process handle.
func (p *ProcessProvider) Close() error {
	return windows.CloseHandle(p.handle)
}

// read copies len(buf) bytes starting at base. A whole-module read is tried
// first; protected pages fall back to a page-by-page pass where unreadable
// pages stay zeroed, which at worst turns the affected signatures stale.
func (p *ProcessProvider) read(base uintptr, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if err := windows.ReadProcessMemory(p.handle, base, &buf[0], uintptr(len(buf)), nil); err == nil {
		return nil
	}

	const pageSize = uintptr(4096)
	total := uintptr(len(buf))
	readable := uintptr(0)
	for off := uintptr(0); off < total; off += pageSize {
		n := pageSize
		if off+n > total {
			n = total - off
		}
		if windows.ReadProcessMemory(p.handle, base+off, &buf[off], n, nil) == nil {
			readable += n
		}
	}
	if readable == 0 {
		return fmt.Errorf("no readable pages in %#x..%#x", base, base+total)
	}
	return nil
}

// findProcess locates a process id by executable name.
func findProcess(processName string) (uint32, error) {
	want := strings.ToLower(processName)

	pids := make([]uint32, 2048)
	var needed uint32
	if err := windows.EnumProcesses(pids, &needed); err != nil {
		return 0, fmt.Errorf("enumerating processes: %w", err)
	}

	for _, pid := range pids[:needed/4] {
		if pid == 0 {
			continue
		}
		name, err := processImageName(pid)
		if err != nil {
			continue
		}
		if strings.ToLower(name) == want {
			return pid, nil
		}
	}
	return 0, fmt.Errorf("process %q not found", processName)
}

// processImageName returns the executable base name of pid.
func processImageName(pid uint32) (string, error) {
	h, err := windows.OpenProcess(
		windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, pid)
	if err != nil {
		return "", err
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	if err := windows.GetModuleFileNameEx(h, 0, &buf[0], windows.MAX_PATH); err != nil {
		return "", err
	}
	return filepath.Base(syscall.UTF16ToString(buf[:])), nil
}

// listModules snapshots every module loaded in the process.
func listModules(h windows.Handle, pid uint32) (map[string]moduleInfo, error) {
	var handles [1024]windows.Handle
	var needed uint32
	size := uint32(unsafe.Sizeof(handles[0]))
	if err := windows.EnumProcessModules(h, &handles[0], size*1024, &needed); err != nil {
		return nil, fmt.Errorf("enumerating modules of %d: %w", pid, err)
	}
	count := needed / size

	modules := make(map[string]moduleInfo, count)
	for i := uint32(0); i < count; i++ {
		var mi windows.ModuleInfo
		if err := windows.GetModuleInformation(h, handles[i], &mi, uint32(unsafe.Sizeof(mi))); err != nil {
			return nil, fmt.Errorf("module information: %w", err)
		}

		var name [windows.MAX_PATH]uint16
		if err := windows.GetModuleFileNameEx(h, handles[i], &name[0], windows.MAX_PATH); err != nil {
			return nil, fmt.Errorf("module file name: %w", err)
		}

		base := filepath.Base(syscall.UTF16ToString(name[:]))
		modules[strings.ToLower(base)] = moduleInfo{
			base: mi.BaseOfDll,
			size: mi.SizeOfImage,
			name: base,
		}
	}
	return modules, nil
}
