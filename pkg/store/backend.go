package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/macropower/cardfont/pkg/yaml"
)

// Backend loads and saves the whole tree.
type Backend interface {
	Load() (map[string]any, error)
	Save(data map[string]any) error
}

// Compile-time interface checks.
var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*File)(nil)
)

// Memory is a [Backend] that keeps the tree in memory.
type Memory struct {
	data  map[string]any
	saves int
	mu    sync.Mutex
}

// NewMemory creates a [Memory] backend seeded with a copy of data.
func NewMemory(data map[string]any) *Memory {
	return &Memory{data: cloneMap(data)}
}

func (m *Memory) Load() (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneMap(m.data), nil
}

func (m *Memory) Save(data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = cloneMap(data)
	m.saves++

	return nil
}

// Saves returns how many times [Memory.Save] was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}

// File is a [Backend] that stores the tree as a YAML document.
type File struct {
	Path string
}

// NewFile creates a [File] backend for the given path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the document. A missing file loads as an empty tree.
func (f *File) Load() (map[string]any, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	out := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}

	return out, nil
}

// Save replaces the document. When every top-level key of the current
// document is still present, data is merged into it so that comments on
// those keys survive. The new content is written to a temporary file in the
// same directory and renamed over the old one.
func (f *File) Save(data map[string]any) error {
	b, err := f.encode(data)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)

	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = tmp.Write(b)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	err = os.Rename(tmp.Name(), f.Path)
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}

	return nil
}

func (f *File) encode(data map[string]any) ([]byte, error) {
	current, err := os.ReadFile(f.Path)
	if err == nil && len(bytes.TrimSpace(current)) > 0 {
		prev := map[string]any{}

		err = yaml.NewDecoder(bytes.NewReader(current)).Decode(&prev)
		if err == nil && hasKeys(data, prev) {
			merged, err := yaml.MergeRootFromValue(current, data)
			if err == nil {
				return merged, nil
			}
		}
	}

	b := &bytes.Buffer{}

	enc := yaml.NewEncoder(b)

	err = enc.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Path, err)
	}

	err = enc.Close()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Path, err)
	}

	return b.Bytes(), nil
}

// hasKeys reports whether every key of prev is also a key of data.
func hasKeys(data, prev map[string]any) bool {
	for k := range prev {
		if _, ok := data[k]; !ok {
			return false
		}
	}

	return true
}
