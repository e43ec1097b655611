package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrCorruptRegistry means the registry file exists but cannot be parsed.
// Callers must surface this instead of resetting the document: the registry
// may be the only record of still-running agents.
var ErrCorruptRegistry = errors.New("corrupt registry")

// Store persists the registry as a single JSON document at a fixed path.
// It keeps no in-memory cache; every logical operation is a fresh
// load-modify-save cycle.
type Store struct {
	path string
}

func NewStore(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

// Load reads the document. A missing file yields an empty registry; an
// unparseable file yields ErrCorruptRegistry.
func (s *Store) Load() (*Registry, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var reg Registry
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRegistry, s.path, err)
	}
	return &reg, nil
}

// Save atomically replaces the document: write a temp file in the target
// directory, fsync, then rename. A concurrent reader never observes a
// partially written document. The file is owner-only.
func (s *Store) Save(reg *Registry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	b, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".agents-*.json")
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write registry: %w", err)
	}
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Update runs fn inside a load-modify-save cycle, serialized against other
// invocations of this program by an advisory file lock held across the whole
// cycle. fn reports whether it changed the document; an unchanged document is
// not rewritten. If fn returns an error the document is not saved.
func (s *Store) Update(fn func(reg *Registry) (changed bool, err error)) error {
	unlock := s.lock()
	defer unlock()

	reg, err := s.Load()
	if err != nil {
		return err
	}
	changed, err := fn(reg)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.Save(reg)
}

// lock takes the advisory lock next to the registry file. The lock is
// best-effort: if it cannot be acquired the update proceeds locklessly, which
// restores the original last-write-wins behavior for a single-operator host.
func (s *Store) lock() func() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return func() {}
	}
	fl := flock.New(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		slog.Warn("registry lock unavailable, proceeding without it", "path", fl.Path(), "error", err)
		return func() {}
	}
	return func() { _ = fl.Unlock() }
}
