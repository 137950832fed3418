//go:build !windows

// Package winmem reads module images out of a running game process.
package winmem

import (
	"fmt"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
)

// ProcessProvider is only functional on Windows; elsewhere Open fails and
// this type exists so callers compile unchanged.
type ProcessProvider struct{}

// Open always fails on non-Windows platforms.
func Open(processName string) (*ProcessProvider, error) {
	return nil, fmt.Errorf("attaching to %q: live process dumping requires windows", processName)
}

// Pid is unreachable on non-Windows platforms.
func (p *ProcessProvider) Pid() uint32 { return 0 }

// GetImage is unreachable on non-Windows platforms.
func (p *ProcessProvider) GetImage(module string) (*image.View, error) {
	return nil, fmt.Errorf("%s: %w", module, image.ErrModuleNotFound)
}

// Close is unreachable on non-Windows platforms.
func (p *ProcessProvider) Close() error { return nil }
