package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/carenet/portal/internal/core/ports"
)

// File keeps entries as one JSON document on disk. Every change rewrites the
// document through a temp file and a rename, so a crash leaves either the
// old or the new entries, never a mix.
type File struct {
	path   string
	sealer *Sealer

	mu sync.Mutex
}

var _ ports.KeyValueStore = (*File)(nil)

// NewFile stores entries at path. A non-nil sealer encrypts the document.
func NewFile(path string, sealer *Sealer) (*File, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &File{path: path, sealer: sealer}, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) SetAll(_ context.Context, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.readOrReset()
	if err != nil {
		return err
	}
	maps.Copy(data, entries)
	return f.write(data)
}

func (f *File) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	changed := false
	if errors.Is(err, ports.ErrCorruptState) {
		data, err, changed = make(map[string]string), nil, true
	}
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.write(data)
}

// Ping checks that the directory is writable.
func (f *File) Ping(context.Context) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".ping-*")
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}

func (f *File) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read: %w", err)
	}
	if f.sealer != nil {
		if raw, err = f.sealer.Open(raw); err != nil {
			return nil, fmt.Errorf("file store: %w: %w", ports.ErrCorruptState, err)
		}
	}
	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("file store: decode: %w: %w", ports.ErrCorruptState, err)
	}
	return data, nil
}

// readOrReset is read with a corrupt document taken as empty, for writes
// that overwrite it.
func (f *File) readOrReset() (map[string]string, error) {
	data, err := f.read()
	if errors.Is(err, ports.ErrCorruptState) {
		return make(map[string]string), nil
	}
	return data, err
}

func (f *File) write(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	if f.sealer != nil {
		if raw, err = f.sealer.Seal(raw); err != nil {
			return fmt.Errorf("file store: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}
