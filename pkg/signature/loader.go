package signature

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/pattern"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// Loader reads signature files into compiled registry entries. Signatures
// are static data: any malformed pattern fails the whole load, once, up
// front.
type Loader struct {
	fs fs.FS
}

// NewLoader creates a loader backed by the built-in signature files.
func NewLoader() *Loader {
	return &Loader{fs: builtinFS}
}

// NewLoaderWithFS creates a loader over a custom filesystem.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// Load parses one signature file from YAML bytes. File order is registration
// order: the builder later processes entries exactly as listed here.
func (l *Loader) Load(data []byte) ([]*types.Signature, error) {
	var file yamlModuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if file.Module == "" {
		return nil, fmt.Errorf("signature file missing module name")
	}
	if len(file.Signatures) == 0 {
		return nil, fmt.Errorf("no signatures found for %s", file.Module)
	}

	sigs := make([]*types.Signature, 0, len(file.Signatures))
	seen := make(map[string]bool, len(file.Signatures))
	for _, ys := range file.Signatures {
		sig, err := convert(file.Module, ys)
		if err != nil {
			return nil, err
		}
		if seen[sig.Name] {
			return nil, fmt.Errorf("%s: duplicate signature name %q", file.Module, sig.Name)
		}
		seen[sig.Name] = true
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// LoadFile parses a signature file from a path.
func (l *Loader) LoadFile(path string) ([]*types.Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.Load(data)
}

// LoadBuiltin loads every built-in signature file. Files are visited in
// lexical order, so the registry is identical on every run.
func (l *Loader) LoadBuiltin() ([]*types.Signature, error) {
	var sigs []*types.Signature

	err := fs.WalkDir(l.fs, "signatures", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		fileSigs, err := l.Load(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		sigs = append(sigs, fileSigs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sigs, nil
}

// convert compiles one YAML entry and validates it against the registry
// invariants: the pattern must compile, must produce at least one capture
// (the entry's primary value), and may only name a known derivation rule.
func convert(module string, ys yamlSignature) (*types.Signature, error) {
	if ys.Name == "" {
		return nil, fmt.Errorf("%s: signature missing name", module)
	}
	compiled, err := pattern.Compile(ys.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", module, ys.Name, err)
	}
	if compiled.Captures == 0 {
		return nil, fmt.Errorf("%s/%s: pattern captures nothing", module, ys.Name)
	}
	if ys.Derive != "" {
		if _, ok := Derivation(ys.Derive); !ok {
			return nil, fmt.Errorf("%s/%s: unknown derivation rule %q", module, ys.Name, ys.Derive)
		}
	}
	return &types.Signature{
		Module:   module,
		Name:     ys.Name,
		Pattern:  ys.Pattern,
		Derive:   ys.Derive,
		Compiled: compiled,
	}, nil
}

// ForModule returns the subset of sigs registered for module, preserving
// registration order.
func ForModule(sigs []*types.Signature, module string) []*types.Signature {
	var out []*types.Signature
	for _, sig := range sigs {
		if sig.Module == module {
			out = append(out, sig)
		}
	}
	return out
}

// Modules returns the distinct module names in sigs, in first-seen order.
func Modules(sigs []*types.Signature) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sig := range sigs {
		if !seen[sig.Module] {
			seen[sig.Module] = true
			out = append(out, sig.Module)
		}
	}
	return out
}
