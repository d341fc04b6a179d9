// Package memory provides an in-memory store.Model.
//
// Documents live in a map guarded by a sync.RWMutex. Reads and writes hand out
// deep copies, so callers may mutate returned documents freely; nothing reaches
// the model until Save. Filtering is exact match on (dot-path) fields, compared
// by their string form so that query-string values match numeric fields.
//
// Usage:
//
//	users := memory.New("users")
//	users.SetStatic("privateKeys", []string{"password"})
//	_ = users.Seed([]store.Document{{"_id": "1", "name": "Alice"}})
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/getmockd/restkit/internal/id"
	"github.com/getmockd/restkit/pkg/store"
)

// Model is an in-memory collection of documents.
type Model struct {
	mu      sync.RWMutex
	name    string
	docs    map[string]store.Document
	order   []string
	seed    []store.Document
	statics map[string]any
}

var (
	_ store.Model          = (*Model)(nil)
	_ store.StaticProvider = (*Model)(nil)
)

// New creates an empty model.
func New(name string) *Model {
	return &Model{
		name:    name,
		docs:    make(map[string]store.Document),
		statics: make(map[string]any),
	}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// SetStatic registers a named static value, such as the private field list or
// a map of custom handlers.
func (m *Model) SetStatic(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statics[key] = value
}

// Static returns a named static value.
func (m *Model) Static(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.statics[key]
	return v, ok
}

// Seed loads documents into the model and remembers them for Reset.
// Documents without an id get one.
func (m *Model) Seed(docs []store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seed = make([]store.Document, 0, len(docs))
	for i, d := range docs {
		doc := copyDoc(d)
		if _, ok := doc[store.IDField]; !ok {
			doc[store.IDField] = id.New()
		}
		key := idKey(doc[store.IDField])
		if _, exists := m.docs[key]; exists {
			return fmt.Errorf("duplicate ID %q in seed data at index %d", key, i)
		}
		m.put(key, doc)
		m.seed = append(m.seed, copyDoc(doc))
	}
	return nil
}

// Reset replaces the contents of the model with its seed data.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs = make(map[string]store.Document, len(m.seed))
	m.order = m.order[:0]
	for _, d := range m.seed {
		m.put(idKey(d[store.IDField]), copyDoc(d))
	}
}

// Count returns the number of stored documents.
func (m *Model) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Find starts a query over the model.
func (m *Model) Find(filter store.Document) store.Query {
	return &query{model: m, filter: filter}
}

// FindByID returns a copy of the document with the given id.
func (m *Model) FindByID(ctx context.Context, docID string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[docID]
	if !ok {
		return nil, &store.NotFoundError{Model: m.name, ID: docID}
	}
	return copyDoc(doc), nil
}

// New returns an unsaved copy of fields with an id assigned if missing.
func (m *Model) New(fields store.Document) store.Document {
	doc := make(store.Document, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	if v, ok := doc[store.IDField]; !ok || v == nil || v == "" {
		doc[store.IDField] = id.New()
	}
	return doc
}

// Insert stores doc unless its id is already taken.
func (m *Model) Insert(ctx context.Context, doc store.Document) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("insert %s: document is nil", m.name)
	}

	stored := copyDoc(doc)
	if v, ok := stored[store.IDField]; !ok || v == nil || v == "" {
		stored[store.IDField] = id.New()
	}
	key := idKey(stored[store.IDField])

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[key]; exists {
		return nil, &store.DuplicateIDError{Model: m.name, ID: key}
	}
	m.put(key, stored)

	return copyDoc(stored), nil
}

// Save inserts or replaces doc by id.
func (m *Model) Save(ctx context.Context, doc store.Document) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("save %s: document is nil", m.name)
	}

	stored := copyDoc(doc)
	if v, ok := stored[store.IDField]; !ok || v == nil || v == "" {
		stored[store.IDField] = id.New()
	}

	m.mu.Lock()
	m.put(idKey(stored[store.IDField]), stored)
	m.mu.Unlock()

	return copyDoc(stored), nil
}

// Remove deletes all documents matching filter.
func (m *Model) Remove(ctx context.Context, filter store.Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	kept := m.order[:0]
	for _, key := range m.order {
		if Matches(m.docs[key], filter) {
			delete(m.docs, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	m.order = kept
	return removed, nil
}

// put stores doc under key. Callers hold the write lock.
func (m *Model) put(key string, doc store.Document) {
	if _, exists := m.docs[key]; !exists {
		m.order = append(m.order, key)
	}
	m.docs[key] = doc
}

// snapshot returns copies of all documents in insertion order.
func (m *Model) snapshot(filter store.Document) []store.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Document, 0, len(m.order))
	for _, key := range m.order {
		doc := m.docs[key]
		if Matches(doc, filter) {
			out = append(out, copyDoc(doc))
		}
	}
	return out
}

func idKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func copyDoc(doc store.Document) store.Document {
	if doc == nil {
		return nil
	}
	cp, _ := deepcopy.Copy(doc).(store.Document)
	return cp
}
