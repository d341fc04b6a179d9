// Package file provides a store.Model persisted as one JSON file per
// collection.
//
// Documents are served from an in-memory model and written back to
// <dir>/<name>.json after changes, debounced, with an atomic
// write-then-rename. Close performs a final save.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getmockd/restkit/pkg/logging"
	"github.com/getmockd/restkit/pkg/store"
	"github.com/getmockd/restkit/pkg/store/memory"
)

// Current data format version for migration support
const dataVersion = 1

// DefaultSaveDebounce is the delay between a change and the write to disk.
const DefaultSaveDebounce = 500 * time.Millisecond

// fileData is the on-disk format of a collection.
type fileData struct {
	Version   int              `json:"version"`
	Name      string           `json:"name"`
	Documents []store.Document `json:"documents"`
}

// Model is a file-backed collection. Reads are served from memory.
type Model struct {
	*memory.Model

	path     string
	created  bool
	debounce time.Duration
	log      *slog.Logger

	dirty     atomic.Bool
	saveMu    sync.Mutex
	saveCh    chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
	closedCh  chan struct{} // signals when saveLoop has exited
}

var (
	_ store.Model          = (*Model)(nil)
	_ store.StaticProvider = (*Model)(nil)
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for background save failures.
func WithLogger(log *slog.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// WithSaveDebounce overrides DefaultSaveDebounce.
func WithSaveDebounce(d time.Duration) Option {
	return func(m *Model) {
		m.debounce = d
	}
}

// Open loads the collection called name from dir, creating dir when needed.
// A missing file yields an empty collection; Created reports that case.
func Open(dir, name string, opts ...Option) (*Model, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	m := &Model{
		Model:    memory.New(name),
		path:     filepath.Join(dir, name+".json"),
		debounce: DefaultSaveDebounce,
		log:      logging.Nop(),
		saveCh:   make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
		closedCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m.created = true
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	default:
		var stored fileData
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, fmt.Errorf("parse %s: %w", m.path, err)
		}
		if stored.Version > dataVersion {
			return nil, fmt.Errorf("%s: unsupported data version %d", m.path, stored.Version)
		}
		if err := m.Model.Seed(stored.Documents); err != nil {
			return nil, fmt.Errorf("load %s: %w", m.path, err)
		}
	}

	go m.saveLoop()
	return m, nil
}

// Path returns the backing file.
func (m *Model) Path() string {
	return m.path
}

// Created reports whether the backing file did not exist at Open.
func (m *Model) Created() bool {
	return m.created
}

// Insert stores a new doc and schedules a write.
func (m *Model) Insert(ctx context.Context, doc store.Document) (store.Document, error) {
	inserted, err := m.Model.Insert(ctx, doc)
	if err == nil {
		m.markDirty()
	}
	return inserted, err
}

// Save stores doc and schedules a write.
func (m *Model) Save(ctx context.Context, doc store.Document) (store.Document, error) {
	saved, err := m.Model.Save(ctx, doc)
	if err == nil {
		m.markDirty()
	}
	return saved, err
}

// Remove deletes matching documents and schedules a write when any were removed.
func (m *Model) Remove(ctx context.Context, filter store.Document) (int64, error) {
	n, err := m.Model.Remove(ctx, filter)
	if err == nil && n > 0 {
		m.markDirty()
	}
	return n, err
}

// Seed loads documents and schedules a write.
func (m *Model) Seed(docs []store.Document) error {
	if err := m.Model.Seed(docs); err != nil {
		return err
	}
	m.markDirty()
	return nil
}

// Flush writes the collection to disk now.
func (m *Model) Flush() error {
	m.dirty.Store(true)
	return m.save()
}

// Close saves pending changes and stops the save loop. Safe to call multiple times.
func (m *Model) Close(context.Context) error {
	m.closeOnce.Do(func() {
		close(m.closeCh)
	})
	<-m.closedCh
	if m.dirty.Load() {
		return m.save()
	}
	return nil
}

// saveLoop handles debounced saving to prevent excessive disk writes.
func (m *Model) saveLoop() {
	defer close(m.closedCh)
	var timer *time.Timer
	for {
		select {
		case <-m.saveCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(m.debounce, func() {
				if err := m.save(); err != nil {
					m.log.Error("failed to save collection", "path", m.path, "error", err)
				}
			})
		case <-m.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (m *Model) markDirty() {
	m.dirty.Store(true)
	select {
	case m.saveCh <- struct{}{}:
	default:
		// save already pending
	}
}

// save performs an atomic write of the collection if it is dirty.
func (m *Model) save() error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if !m.dirty.Swap(false) {
		return nil
	}

	docs, err := m.Model.Find(nil).Exec(context.Background())
	if err != nil {
		m.dirty.Store(true)
		return err
	}
	if docs == nil {
		docs = []store.Document{}
	}
	data, err := json.MarshalIndent(fileData{Version: dataVersion, Name: m.Name(), Documents: docs}, "", "  ")
	if err != nil {
		m.dirty.Store(true)
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		m.dirty.Store(true)
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		m.dirty.Store(true)
		return err
	}
	return nil
}
