package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hectorgimenez/questengine/internal/quest"
)

var ErrCorruptRecord = errors.New("pending record is corrupt")

// File keeps a single pending quest.Record as JSON. A Save replaces whatever
// was stored before.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Save(r quest.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// LoadPending returns nil without error when nothing is pending.
func (f *File) LoadPending() (*quest.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var r quest.Record
	if err = json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	return &r, nil
}

func (f *File) ClearPending() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Noop stores nothing.
type Noop struct{}

func (Noop) Save(quest.Record) error             { return nil }
func (Noop) LoadPending() (*quest.Record, error) { return nil, nil }
func (Noop) ClearPending() error                 { return nil }
